package catalog

import (
	"context"
	"fmt"

	"afdscraper/pkg/afdian"
	"afdscraper/pkg/logger"
)

// PostLister fetches the first page of a creator's posts
type PostLister interface {
	FetchUserPosts(ctx context.Context, userID string) (*afdian.PostListData, error)
}

// AlbumDiscoverer finds the albums a creator publishes into
type AlbumDiscoverer struct {
	client PostLister
	logger logger.Logger
}

// NewAlbumDiscoverer creates a discoverer backed by client
func NewAlbumDiscoverer(client PostLister, log logger.Logger) *AlbumDiscoverer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &AlbumDiscoverer{client: client, logger: log}
}

// Discover returns the distinct album identifiers referenced by the first
// page of userID's posts, in the order they first appear. Only one page is
// requested.
func (d *AlbumDiscoverer) Discover(ctx context.Context, userID string) ([]string, error) {
	data, err := d.client.FetchUserPosts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts of user %s: %w", userID, err)
	}

	albums := []string{}
	if data == nil || len(data.List) == 0 {
		d.logger.WarnWithFields("No posts found, no albums discovered", map[string]interface{}{
			"user_id": userID,
		})
		return albums, nil
	}

	seen := make(map[string]struct{})
	for _, post := range data.List {
		for _, album := range post.Albums {
			if album.AlbumID == "" {
				continue
			}
			if _, ok := seen[album.AlbumID]; ok {
				continue
			}
			seen[album.AlbumID] = struct{}{}
			albums = append(albums, album.AlbumID)
		}
	}

	d.logger.InfoWithFields("Albums discovered", map[string]interface{}{
		"user_id": userID,
		"posts":   len(data.List),
		"albums":  len(albums),
	})
	return albums, nil
}
