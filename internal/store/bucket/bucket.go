// Package bucket stores submissions as a single CSV object in Google Cloud Storage.
package bucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store"
)

const DefaultObject = "feedback/submissions.csv"

// ErrConcurrentWrite means another writer replaced the object between our
// read and our write. The append is not retried.
var ErrConcurrentWrite = errors.New("bucket: object changed during append")

type Config struct {
	Bucket string
	Object string
}

type Store struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	object string
}

func New(log *logger.Logger, client *storage.Client, cfg Config) (*Store, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if client == nil {
		return nil, errors.New("storage client required")
	}
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	if cfg.Bucket == "" {
		return nil, errors.New("missing BUCKET_NAME")
	}
	cfg.Object = strings.TrimLeft(strings.TrimSpace(cfg.Object), "/")
	if cfg.Object == "" {
		cfg.Object = DefaultObject
	}
	return &Store{
		log:    log.With("store", "bucket", "bucket", cfg.Bucket, "object", cfg.Object),
		client: client,
		bucket: cfg.Bucket,
		object: cfg.Object,
	}, nil
}

func (s *Store) Name() string { return "bucket" }

func (s *Store) handle() *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.object)
}

// Initialize writes a header-only object unless one already exists. An
// existing blank object is overwritten with the header.
func (s *Store) Initialize(ctx context.Context) error {
	head, err := store.EncodeHeader()
	if err != nil {
		return err
	}
	err = s.write(ctx, s.handle().If(storage.Conditions{DoesNotExist: true}), head)
	if isPreconditionFailed(err) {
		return s.repairBlank(ctx, head)
	}
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	s.log.Info("Initialized bucket store")
	return nil
}

func (s *Store) repairBlank(ctx context.Context, head []byte) error {
	body, gen, err := s.read(ctx)
	if err != nil || gen == 0 || len(bytes.TrimSpace(body)) > 0 {
		return err
	}
	err = s.write(ctx, s.handle().If(storage.Conditions{GenerationMatch: gen}), head)
	if isPreconditionFailed(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	s.log.Info("Wrote header into blank bucket object")
	return nil
}

func (s *Store) Append(ctx context.Context, sub feedback.Submission) error {
	body, gen, err := s.read(ctx)
	if err != nil {
		return err
	}
	cond := storage.Conditions{GenerationMatch: gen}
	if gen == 0 {
		cond = storage.Conditions{DoesNotExist: true}
	}
	next, err := appendRow(body, sub.Row())
	if err != nil {
		return err
	}
	err = s.write(ctx, s.handle().If(cond), next)
	if isPreconditionFailed(err) {
		return ErrConcurrentWrite
	}
	if err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// appendRow returns body with row added as the last record. A missing or
// blank body gets the header first.
func appendRow(body []byte, row feedback.Row) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		head, err := store.EncodeHeader()
		if err != nil {
			return nil, err
		}
		body = head
	}
	buf := bytes.NewBuffer(append([]byte(nil), body...))
	if !bytes.HasSuffix(body, []byte("\n")) {
		buf.WriteByte('\n')
	}
	if err := store.WriteRows(buf, row); err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Store) LoadAll(ctx context.Context) (store.Table, error) {
	body, gen, err := s.read(ctx)
	if err != nil {
		return store.Table{}, err
	}
	if gen == 0 {
		return store.EmptyTable(), nil
	}
	tbl, err := store.ParseCSV(bytes.NewReader(body))
	if err != nil {
		return store.Table{}, fmt.Errorf("parse object: %w", err)
	}
	return tbl, nil
}

// read returns the object body and generation, or a zero generation when
// the object does not exist.
func (s *Store) read(ctx context.Context) ([]byte, int64, error) {
	r, err := s.handle().NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open object: %w", err)
	}
	defer r.Close()
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read object: %w", err)
	}
	return body, r.Attrs.Generation, nil
}

func (s *Store) write(ctx context.Context, obj *storage.ObjectHandle, body []byte) error {
	w := obj.NewWriter(ctx)
	w.ContentType = "text/csv; charset=utf-8"
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
