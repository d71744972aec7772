package server

import (
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

// GetMyProfile handles GET /api/users/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// GetAllUsers handles GET /api/users.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	if _, err := s.currentUser(c); err != nil {
		return nil
	}

	p := parsePagination(c, 10)
	users, err := s.userService.ListUsers(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// GetUser handles GET /api/users/:id.
func (s *Server) GetUser(c *fiber.Ctx) error {
	if _, err := s.currentUser(c); err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// GetUserByUsername handles GET /api/users/name/:username.
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	if _, err := s.currentUser(c); err != nil {
		return nil
	}
	username := c.Params("username")

	user, err := s.userService.GetUserByUsername(c.UserContext(), username)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateUser handles PATCH /api/users/:id. Absent fields stay untouched; a
// body carrying no updatable field at all is rejected.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateUser(c.UserContext(), actor, id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// DeleteUser handles DELETE /api/users/:id. The account is deactivated, not
// removed.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.UserContext(), actor, id); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PromoteToAdmin handles POST /api/users/:id/privileges.
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GrantAdmin(c.UserContext(), actor, id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// DemoteFromAdmin handles DELETE /api/users/:id/privileges.
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.RevokeAdmin(c.UserContext(), actor, id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}
