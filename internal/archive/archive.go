// Package archive defines where expired posts are copied before the sweeper
// deletes them.
package archive

import (
	"context"
	"time"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

type Archiver interface {
	// Archive stores posts as a single object and returns its name.
	Archive(ctx context.Context, posts []model.Post, at time.Time) (string, error)
}
