package erpsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"device-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrReportNotFound is returned when no report exists under the name.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidReportName is returned for names outside the report prefix.
	ErrInvalidReportName = errors.New("invalid report name")
)

// ReportInfo describes an archived report.
type ReportInfo struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archive stores sync runs as JSON objects in the bucket.
type Archive struct {
	client storage.Client
	bucket string
	prefix string
}

// NewArchive creates an archive writing under prefix in bucket.
func NewArchive(client storage.Client, bucket, prefix string) *Archive {
	return &Archive{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Save writes run and returns the report name.
// Names sort by start time: 20260302T083000Z-<run id>.json.
func (a *Archive) Save(ctx context.Context, run *Run) (string, error) {
	started := run.Result.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	name := fmt.Sprintf("%s-%s.json", started.UTC().Format("20060102T150405Z"), run.ID)
	stored := *run
	stored.Report = name

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = a.client.PutObject(ctx, a.bucket, a.objectName(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", name, err)
	}
	return name, nil
}

// List returns archived reports, newest first.
func (a *Archive) List(ctx context.Context) ([]ReportInfo, error) {
	prefix := ""
	if a.prefix != "" {
		prefix = a.prefix + "/"
	}

	reports := []ReportInfo{}
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		name := path.Base(obj.Key)
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		reports = append(reports, ReportInfo{Name: name, Size: obj.Size, LastModified: obj.LastModified})
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Name > reports[j].Name })
	return reports, nil
}

// Get reads an archived run by report name.
func (a *Archive) Get(ctx context.Context, name string) (*Run, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || !strings.HasSuffix(name, ".json") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReportName, name)
	}

	obj, err := a.client.GetObject(ctx, a.bucket, a.objectName(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, a.mapErr(name, err)
	}
	defer obj.Close()

	var run Run
	if err := json.NewDecoder(obj).Decode(&run); err != nil {
		return nil, a.mapErr(name, err)
	}
	return &run, nil
}

func (a *Archive) objectName(name string) string {
	if a.prefix == "" {
		return name
	}
	return a.prefix + "/" + name
}

func (a *Archive) mapErr(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	return fmt.Errorf("failed to read report %s: %w", name, err)
}
