// Zaparoo MediaLib
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo MediaLib.
//
// Zaparoo MediaLib is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo MediaLib is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo MediaLib.  If not, see <http://www.gnu.org/licenses/>.

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// DefaultTimeoutSeconds is the default timeout for HTTP requests
	DefaultTimeoutSeconds = 30
	DefaultRetryMax       = 3
	UserAgent             = "medialib/1.0 (+https://github.com/ZaparooProject/zaparoo-medialib)"

	// maxBodyBytes caps page and listing downloads.
	maxBodyBytes = 32 << 20
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// DefaultTransport provides a configured transport with connection pooling and reasonable timeouts
var DefaultTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
}

// leveledLogger routes retryablehttp's logging to zerolog.
type leveledLogger struct{}

func fields(ev *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		ev = ev.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	return ev
}

func (leveledLogger) Error(msg string, kv ...any) { fields(log.Error(), kv).Msg(msg) }
func (leveledLogger) Info(msg string, kv ...any)  { fields(log.Debug(), kv).Msg(msg) }
func (leveledLogger) Debug(msg string, kv ...any) { fields(log.Trace(), kv).Msg(msg) }
func (leveledLogger) Warn(msg string, kv ...any)  { fields(log.Warn(), kv).Msg(msg) }

// Client retries transient failures (connection errors, 429 and 5xx) with
// exponential backoff.
type Client struct {
	rc *retryablehttp.Client
}

type Option func(*retryablehttp.Client)

func WithRetryMax(n int) Option {
	return func(c *retryablehttp.Client) {
		c.RetryMax = n
	}
}

func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = minWait
		c.RetryWaitMax = maxWait
	}
}

// WithHTTPClient replaces the underlying client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *retryablehttp.Client) {
		c.HTTPClient = hc
	}
}

// NewClient creates a retrying client with the given overall request timeout
func NewClient(timeout time.Duration, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: DefaultTransport, Timeout: timeout}
	rc.RetryMax = DefaultRetryMax
	rc.Logger = leveledLogger{}
	// hand the last response back instead of a generic "giving up" error
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{rc: rc}
}

// StandardClient is a *http.Client that retries through this client.
func (c *Client) StandardClient() *http.Client {
	return c.rc.StandardClient()
}

// Get performs a GET request and returns the response
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.rc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing GET request: %w", err)
	}
	return resp, nil
}

// GetBody fetches url and returns its body along with the final URL after
// redirects. Non-2xx responses return a *StatusError.
func (c *Client) GetBody(ctx context.Context, url string) (body []byte, finalURL string, err error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, "", err
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("error reading body: %w", err)
	}
	final := url
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return b, final, nil
}

// Resolve follows redirects for short links and returns the final URL.
func (c *Client) Resolve(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	resp, err := c.rc.Do(req)
	if err != nil {
		return "", fmt.Errorf("error resolving %s: %w", url, err)
	}
	defer closeBody(resp)
	if resp.Request == nil || resp.Request.URL == nil {
		return url, nil
	}
	return resp.Request.URL.String(), nil
}

// DownloadFileArgs contains arguments for file download operations
type DownloadFileArgs struct {
	Fs         afero.Fs
	URL        string
	OutputPath string
	TempPath   string
}

// DownloadFile downloads a file from the given URL to the output path
func (c *Client) DownloadFile(ctx context.Context, args DownloadFileArgs) error {
	resp, err := c.Get(ctx, args.URL)
	if err != nil {
		return err
	}
	if resp == nil {
		return errors.New("received nil response")
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: args.URL, StatusCode: resp.StatusCode}
	}

	afs := args.Fs
	if afs == nil {
		afs = afero.NewOsFs()
	}

	// Use temp path if provided, otherwise use output path directly
	outputPath := args.OutputPath
	if args.TempPath != "" {
		outputPath = args.TempPath
	}

	file, err := afs.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	discard := func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msgf("error closing file: %s", outputPath)
		}
		if removeErr := afs.Remove(outputPath); removeErr != nil {
			log.Warn().Err(removeErr).Msgf("error removing partial download: %s", outputPath)
		}
	}

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		discard()
		return fmt.Errorf("error downloading file: %w", err)
	}

	expected := resp.ContentLength
	if expected > 0 && written != expected {
		discard()
		return fmt.Errorf("download incomplete: expected %d bytes, got %d", expected, written)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}

	// Move from temp path to final path if using temp file
	if args.TempPath != "" && args.TempPath != args.OutputPath {
		if err := helpers.MoveFile(afs, args.TempPath, args.OutputPath); err != nil {
			if removeErr := afs.Remove(args.TempPath); removeErr != nil {
				log.Warn().Err(removeErr).Msgf("error removing temp file: %s", args.TempPath)
			}
			return fmt.Errorf("error renaming temp file: %w", err)
		}
	}

	return nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Error().Err(err).Msg("error closing response body")
	}
}
