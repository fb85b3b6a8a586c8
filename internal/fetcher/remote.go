package fetcher

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Downloader retrieves a URL into a local file.
type Downloader interface {
	DownloadToFile(ctx context.Context, rawURL string, dest string) (int64, error)
}

// Remote routes workbook URLs to the downloader for their scheme.
type Remote struct {
	byScheme map[string]Downloader
}

// NewRemote returns a Remote serving http, https and ftp.
func NewRemote(httpOpts HTTPOptions, ftpOpts FTPOptions) *Remote {
	h := NewHTTPFetcher(httpOpts)
	return &Remote{byScheme: map[string]Downloader{
		"http":  h,
		"https": h,
		"ftp":   NewFTPFetcher(ftpOpts),
	}}
}

// IsRemote reports whether input is an http, https or ftp URL.
func IsRemote(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp":
		return u.Host != ""
	}
	return false
}

// Localize returns a local path for input. Local paths are returned as is;
// URLs are downloaded into dir under their base name.
func (r *Remote) Localize(ctx context.Context, input, dir string) (string, error) {
	if !IsRemote(input) {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: parse url")
	}
	d, ok := r.byScheme[u.Scheme]
	if !ok {
		return "", eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}

	name := path.Base(u.Path)
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name = "input.xlsx"
	}
	dest := filepath.Join(dir, name)

	n, err := d.DownloadToFile(ctx, input, dest)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: localize %s", u.Redacted())
	}
	zap.L().Info("fetcher: downloaded workbook",
		zap.String("url", u.Redacted()),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)
	return dest, nil
}
