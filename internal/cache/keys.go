package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	UsernameKeyPrefix = "user:name:%s"
	PostKeyPrefix     = "post:%d"
	PostSlugKeyPrefix = "post:slug:%s"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UsernameKey(username string) string {
	return fmt.Sprintf(UsernameKeyPrefix, username)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func PostSlugKey(slug string) string {
	return fmt.Sprintf(PostSlugKeyPrefix, slug)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateUser drops both lookup paths for a user. Callers pass the
// username so a rename clears the stale name key too.
func InvalidateUser(ctx context.Context, userID uint, username string) {
	Invalidate(ctx, UserKey(userID), UsernameKey(username))
}

// InvalidatePost drops both lookup paths for a post.
func InvalidatePost(ctx context.Context, postID uint, slug string) {
	Invalidate(ctx, PostKey(postID), PostSlugKey(slug))
}
