package trainer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/time/rate"

	"github.com/orchardai/visionlab/pkg/labelset"
	"github.com/orchardai/visionlab/pkg/vision/customvision"
)

// TrainingAPI is the slice of the Custom Vision training client the uploader
// needs. *customvision.TrainingClient satisfies it.
type TrainingAPI interface {
	GetTags(ctx context.Context, projectID string) ([]customvision.Tag, error)
	CreateImage(ctx context.Context, projectID string, imageData []byte, tagIDs []string) (*customvision.ImageCreateSummary, error)
	CreateImagesFromFiles(ctx context.Context, projectID string, batch customvision.ImageFileCreateBatch) (*customvision.ImageCreateSummary, error)
}

// DefaultImagePatterns matches the image formats the training service accepts.
var DefaultImagePatterns = []string{"*.jpg", "*.jpeg", "*.png", "*.gif", "*.bmp"}

// UploadConfig configures an Uploader.
type UploadConfig struct {
	// ProjectID is the target project (required).
	ProjectID string

	// Patterns are doublestar patterns (matched case-insensitively against
	// the base filename) selecting image files inside each tag folder.
	// Empty means DefaultImagePatterns.
	Patterns []string

	// RateLimit caps upload requests per second. Zero means unlimited.
	RateLimit float64
}

// UploadSummary reports what a folder upload did.
type UploadSummary struct {
	// TagsSeen is the number of project tags with a matching folder.
	TagsSeen int

	// ImagesUploaded is the number of images accepted by the service.
	ImagesUploaded int

	// Skipped lists tag folders that were absent under the root.
	Skipped []string
}

// Uploader pushes labeled training images into a Custom Vision project.
//
// Two upload shapes are supported, mirroring the two training workflows:
// per-tag folders for classification (UploadFolder) and a label set with
// bounding-box regions for object detection (UploadLabelSet).
type Uploader struct {
	Client TrainingAPI
	Config UploadConfig

	// Progress, when set, is called with a short human-readable note as the
	// upload advances (tag names, batch results).
	Progress func(msg string)

	limiter *rate.Limiter
}

// NewUploader creates an uploader for the given client and config.
func NewUploader(client TrainingAPI, cfg UploadConfig) (*Uploader, error) {
	if client == nil {
		return nil, fmt.Errorf("trainer: training client is required")
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("trainer: project ID is required")
	}
	u := &Uploader{Client: client, Config: cfg}
	if cfg.RateLimit > 0 {
		u.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return u, nil
}

// UploadFolder uploads every matching image under root, organized as one
// subfolder per project tag:
//
//	root/
//	  apple/   img01.jpg ...
//	  banana/  img01.jpg ...
//
// Tags are read from the project; folders for unknown tags are ignored, and
// tags without a folder are skipped (reported in the summary).
func (u *Uploader) UploadFolder(ctx context.Context, root string) (*UploadSummary, error) {
	tags, err := u.Client.GetTags(ctx, u.Config.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("trainer: project has no tags; create tags before uploading")
	}

	sum := &UploadSummary{}
	for _, tag := range tags {
		tagDir := filepath.Join(root, tag.Name)
		if fi, err := os.Stat(tagDir); err != nil || !fi.IsDir() {
			sum.Skipped = append(sum.Skipped, tag.Name)
			continue
		}
		u.report(tag.Name)
		sum.TagsSeen++

		files, err := u.matchImages(tagDir)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if err := u.wait(ctx); err != nil {
				return nil, err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("read training image: %w", err)
			}
			if _, err := u.Client.CreateImage(ctx, u.Config.ProjectID, data, []string{tag.ID}); err != nil {
				return nil, err
			}
			sum.ImagesUploaded++
		}
	}
	return sum, nil
}

// UploadLabelSet uploads the images named in the label set as a single batch,
// translating each region's tag name into the project's tag ID. Image files
// are resolved relative to root.
//
// The returned summary is the service's own batch result; callers must check
// IsBatchSuccessful, since a batch may partially fail without an error.
func (u *Uploader) UploadLabelSet(ctx context.Context, root string, set *labelset.Set) (*customvision.ImageCreateSummary, error) {
	if set == nil || len(set.Files) == 0 {
		return nil, fmt.Errorf("trainer: label set is empty")
	}

	tags, err := u.Client.GetTags(ctx, u.Config.ProjectID)
	if err != nil {
		return nil, err
	}
	tagIDs := make(map[string]string, len(tags))
	for _, t := range tags {
		tagIDs[t.Name] = t.ID
	}

	batch := customvision.ImageFileCreateBatch{}
	for _, f := range set.Files {
		regions := make([]customvision.Region, 0, len(f.Tags))
		for _, r := range f.Tags {
			id, ok := tagIDs[r.Tag]
			if !ok {
				return nil, fmt.Errorf("trainer: tag %q is not defined on project %s", r.Tag, u.Config.ProjectID)
			}
			regions = append(regions, customvision.Region{
				TagID:  id,
				Left:   r.Left,
				Top:    r.Top,
				Width:  r.Width,
				Height: r.Height,
			})
		}

		data, err := os.ReadFile(filepath.Join(root, f.Filename))
		if err != nil {
			return nil, fmt.Errorf("read labeled image %s: %w", f.Filename, err)
		}
		batch.Images = append(batch.Images, customvision.ImageFileCreateEntry{
			Name:     f.Filename,
			Contents: data,
			Regions:  regions,
		})
	}

	if err := u.wait(ctx); err != nil {
		return nil, err
	}
	result, err := u.Client.CreateImagesFromFiles(ctx, u.Config.ProjectID, batch)
	if err != nil {
		return nil, err
	}
	if result.IsBatchSuccessful {
		u.report(fmt.Sprintf("uploaded %d images", len(batch.Images)))
	}
	return result, nil
}

// matchImages returns the files directly inside dir whose base name matches
// one of the configured patterns, sorted for deterministic upload order.
func (u *Uploader) matchImages(dir string) ([]string, error) {
	patterns := u.Config.Patterns
	if len(patterns) == 0 {
		patterns = DefaultImagePatterns
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read tag folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, p := range patterns {
			ok, err := doublestar.Match(strings.ToLower(p), name)
			if err != nil {
				return nil, fmt.Errorf("invalid image pattern %q: %w", p, err)
			}
			if ok {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (u *Uploader) wait(ctx context.Context) error {
	if u.limiter == nil {
		return nil
	}
	return u.limiter.Wait(ctx)
}

func (u *Uploader) report(msg string) {
	if u.Progress != nil {
		u.Progress(msg)
	}
}
