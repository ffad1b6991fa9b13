package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/kjk/rentman/log"
	"github.com/melbahja/goph"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/sftp"
)

// Target is a remote place backups are uploaded to
type Target interface {
	Upload(ctx context.Context, name string, d []byte) error
	String() string
}

// Push uploads backup file at path to t under its base name
func Push(ctx context.Context, t Target, path string) error {
	d, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	timeStart := time.Now()
	if err = t.Upload(ctx, name, d); err != nil {
		return fmt.Errorf("uploading '%s' to %s: %w", name, t, err)
	}
	log.EventWithDuration("backup.pushed", time.Since(timeStart), "target", t.String(), "name", name, "size", len(d))
	return nil
}

type S3Target struct {
	Endpoint string
	Access   string
	Secret   string
	Bucket   string
	Region   string
	// prepended to the name of uploaded file
	Prefix string
	// if true, uses http instead of https
	Insecure bool
}

func (t *S3Target) String() string {
	return fmt.Sprintf("s3://%s/%s", t.Bucket, t.Prefix)
}

func (t *S3Target) validate() error {
	if t.Access == "" || t.Secret == "" || t.Bucket == "" || t.Endpoint == "" {
		return errors.New("s3: must provide endpoint, access, secret and bucket")
	}
	return nil
}

func (t *S3Target) Upload(ctx context.Context, name string, d []byte) error {
	if err := t.validate(); err != nil {
		return err
	}
	mc, err := minio.New(t.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(t.Access, t.Secret, ""),
		Region: t.Region,
		Secure: !t.Insecure,
	})
	if err != nil {
		return err
	}
	opts := minio.PutObjectOptions{
		ContentType: ContentType(name),
	}
	remotePath := path.Join(t.Prefix, name)
	_, err = mc.PutObject(ctx, t.Bucket, remotePath, bytes.NewReader(d), int64(len(d)), opts)
	return err
}

type SFTPTarget struct {
	User string
	Host string
	// path of a private key file
	KeyPath string
	// remote directory, created if doesn't exist
	Dir string
}

func (t *SFTPTarget) String() string {
	return fmt.Sprintf("sftp://%s@%s/%s", t.User, t.Host, strings.TrimPrefix(t.Dir, "/"))
}

func (t *SFTPTarget) Upload(ctx context.Context, name string, d []byte) error {
	if t.User == "" || t.Host == "" || t.KeyPath == "" {
		return errors.New("sftp: must provide user, host and key")
	}
	auth, err := goph.Key(t.KeyPath, "")
	if err != nil {
		return fmt.Errorf("goph.Key('%s'): %w", t.KeyPath, err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	client, err := goph.New(t.User, t.Host, auth)
	if err != nil {
		return err
	}
	defer client.Close()

	sc, err := client.NewSftp()
	if err != nil {
		return err
	}
	defer sc.Close()
	return sftpWriteFile(sc, t.Dir, name, d)
}

func sftpWriteFile(sc *sftp.Client, dir string, name string, d []byte) error {
	if dir != "" {
		if err := sc.MkdirAll(dir); err != nil {
			return fmt.Errorf("sftp.MkdirAll('%s'): %w", dir, err)
		}
	}
	remotePath := path.Join(dir, name)
	f, err := sc.Create(remotePath)
	if err != nil {
		return fmt.Errorf("sftp.Create('%s'): %w", remotePath, err)
	}
	_, err = f.Write(d)
	errClose := f.Close()
	if err == nil {
		err = errClose
	}
	return err
}

// HTTPTarget uploads with PUT to URL/name
type HTTPTarget struct {
	URL string
	// sent as X-Api-Key header, if set
	APIKey  string
	Timeout time.Duration
}

func (t *HTTPTarget) String() string {
	return t.URL
}

func (t *HTTPTarget) Upload(ctx context.Context, name string, d []byte) error {
	if t.URL == "" {
		return errors.New("http: must provide url")
	}
	uri := strings.TrimSuffix(t.URL, "/") + "/" + url.PathEscape(name)
	r := requests.
		URL(uri).
		Method(http.MethodPut).
		BodyBytes(d).
		ContentType(ContentType(name))
	if t.APIKey != "" {
		r = r.Header("X-Api-Key", t.APIKey)
	}
	timeout := t.Timeout
	if timeout == 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.Fetch(ctx)
}
