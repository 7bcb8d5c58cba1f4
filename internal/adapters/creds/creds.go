// Package creds loads supplier login credentials from a storage bucket with an
// environment fallback
package creds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	perr "supplysync/internal/platform/errors"

	"cloud.google.com/go/storage"
)

// Credentials are a supplier portal login
type Credentials struct {
	Username string            `json:"username"`
	Password string            `json:"password"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func (c Credentials) valid() bool { return c.Username != "" && c.Password != "" }

// Source resolves credentials for a supplier. A source that simply has none
// returns a NotFound error so a Chain can move on
type Source interface {
	Get(ctx context.Context, supplierID int64) (Credentials, error)
}

// Bucket reads <prefix>/<supplierId>.json from a GCS bucket
type Bucket struct {
	prefix string
	open   func(ctx context.Context, object string) (io.ReadCloser, error)
}

// NewBucket builds a Bucket source over a storage client
func NewBucket(c *storage.Client, bucket, prefix string) *Bucket {
	bh := c.Bucket(bucket)
	return &Bucket{
		prefix: prefix,
		open: func(ctx context.Context, object string) (io.ReadCloser, error) {
			return bh.Object(object).NewReader(ctx)
		},
	}
}

// Object names the credential object of a supplier
func (b *Bucket) Object(supplierID int64) string {
	return path.Join(strings.Trim(b.prefix, "/"), fmt.Sprintf("%d.json", supplierID))
}

// Get implements Source
func (b *Bucket) Get(ctx context.Context, supplierID int64) (Credentials, error) {
	obj := b.Object(supplierID)
	r, err := b.open(ctx, obj)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return Credentials{}, perr.NotFoundf("credential object %s", obj)
	}
	if err != nil {
		return Credentials{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "read credential object %s", obj)
	}
	defer func() { _ = r.Close() }()

	var c Credentials
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&c); err != nil {
		return Credentials{}, perr.Configf("credential object %s is not valid json: %v", obj, err)
	}
	if !c.valid() {
		return Credentials{}, perr.Configf("credential object %s lacks username or password", obj)
	}
	return c, nil
}

// Env reads SUPPLIER_<id>_USERNAME and SUPPLIER_<id>_PASSWORD
type Env struct {
	lookup func(string) (string, bool)
}

// NewEnv returns an Env source over the process environment
func NewEnv() Env { return Env{lookup: os.LookupEnv} }

// Get implements Source
func (e Env) Get(_ context.Context, supplierID int64) (Credentials, error) {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	base := fmt.Sprintf("SUPPLIER_%d_", supplierID)
	u, _ := lookup(base + "USERNAME")
	p, _ := lookup(base + "PASSWORD")
	c := Credentials{Username: strings.TrimSpace(u), Password: p}
	if !c.valid() {
		return Credentials{}, perr.NotFoundf("no %sUSERNAME/%sPASSWORD in env", base, base)
	}
	return c, nil
}

// Chain tries sources in order. Exhausting it is a config error
type Chain []Source

// Get implements Source
func (ch Chain) Get(ctx context.Context, supplierID int64) (Credentials, error) {
	for _, s := range ch {
		if s == nil {
			continue
		}
		c, err := s.Get(ctx, supplierID)
		if err == nil {
			return c, nil
		}
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return Credentials{}, err
		}
	}
	return Credentials{}, perr.Configf("no credentials configured for supplier %d", supplierID)
}
