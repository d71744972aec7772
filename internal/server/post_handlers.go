package server

import (
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

// CreatePost handles POST /api/posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	author, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title            string `json:"title"`
		Text             string `json:"text"`
		ShortDescription string `json:"short_description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), author, service.CreatePostInput{
		Title:            req.Title,
		Text:             req.Text,
		ShortDescription: req.ShortDescription,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 10)
	posts, err := s.postService.ListPosts(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPostByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// GetPostBySlug handles GET /api/posts/slug/:slug.
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	post, err := s.postService.GetPostBySlug(c.UserContext(), slug)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// GetUserPosts handles GET /api/users/name/:username/posts.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")

	p := parsePagination(c, 10)
	posts, err := s.postService.ListPostsByUsername(c.UserContext(), username, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

// UpdatePost handles PATCH /api/posts/:id. The slug never changes, even when
// the title does.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title            *string `json:"title"`
		Text             *string `json:"text"`
		ShortDescription *string `json:"short_description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), actor, id, service.UpdatePostInput{
		Title:            req.Title,
		Text:             req.Text,
		ShortDescription: req.ShortDescription,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Posts are removed permanently.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), actor, id); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
