package engine

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m4xw311/shortbot/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"
)

// Packager stages agent packages in the deployment's staging bucket before
// an engine is created.
type Packager struct {
	svc    *storage.Service
	bucket string
}

// NewPackager builds a storage client for the given staging bucket. The
// bucket may be given with or without the gs:// prefix.
func NewPackager(ctx context.Context, bucket string, opts ...option.ClientOption) (*Packager, error) {
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create storage client")
	}
	return &Packager{
		svc:    svc,
		bucket: strings.TrimPrefix(bucket, "gs://"),
	}, nil
}

// Stage uploads the agent package archive and its requirements file,
// returning the gs:// URIs for the engine's package spec. The archive holds
// the agent manifest under "<packageName>/agent.yaml".
func (p *Packager) Stage(ctx context.Context, packageName string, manifest []byte, requirements []string) (archiveURI, requirementsURI string, err error) {
	archive, err := buildArchive(packageName, manifest)
	if err != nil {
		return "", "", err
	}

	archiveObject := packageName + "/agent_package.tar.gz"
	if err := p.upload(ctx, archiveObject, archive); err != nil {
		return "", "", errors.Wrapf(err, "failed to upload agent package")
	}

	requirementsObject := packageName + "/requirements.txt"
	reqData := []byte(strings.Join(requirements, "\n") + "\n")
	if err := p.upload(ctx, requirementsObject, reqData); err != nil {
		return "", "", errors.Wrapf(err, "failed to upload requirements")
	}

	return p.uri(archiveObject), p.uri(requirementsObject), nil
}

func (p *Packager) upload(ctx context.Context, name string, data []byte) error {
	log.Debug().Str("bucket", p.bucket).Str("object", name).Int("bytes", len(data)).Msg("staging upload")
	_, err := p.svc.Objects.
		Insert(p.bucket, &storage.Object{Name: name}).
		Media(bytes.NewReader(data)).
		Context(ctx).
		Do()
	return err
}

func (p *Packager) uri(object string) string {
	return fmt.Sprintf("gs://%s/%s", p.bucket, object)
}

func buildArchive(packageName string, manifest []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	hdr := &tar.Header{
		Name:    packageName + "/agent.yaml",
		Mode:    0644,
		Size:    int64(len(manifest)),
		ModTime: time.Unix(0, 0), // fixed so repeated staging is byte-identical
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, errors.Wrapf(err, "failed to write archive header")
	}
	if _, err := tw.Write(manifest); err != nil {
		return nil, errors.Wrapf(err, "failed to write manifest to archive")
	}
	if err := tw.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to finalize archive")
	}
	if err := gz.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to finalize gzip stream")
	}
	return buf.Bytes(), nil
}
