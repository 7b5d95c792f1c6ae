package cmd

import (
	"context"

	"github.com/orchardai/visionlab/pkg/imagestore"
	filestore "github.com/orchardai/visionlab/pkg/imagestore/file"
	s3store "github.com/orchardai/visionlab/pkg/imagestore/s3"
)

// openStore builds the image store for a destination string (a local
// directory, file://dir, or s3://bucket/prefix).
func openStore(ctx context.Context, destination string) (imagestore.Store, error) {
	dest, err := imagestore.ParseDestination(destination)
	if err != nil {
		return nil, err
	}
	if dest.Backend == "s3" {
		return s3store.New(ctx, s3store.Config{
			Bucket: dest.Bucket,
			Prefix: dest.Prefix,
		})
	}
	return filestore.New(dest.Path)
}
