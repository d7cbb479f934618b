package scrape

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

var errEmptyPage = errors.New("empty page source")

// Browser is a logged-in window onto the dashboard.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	PageSource(ctx context.Context) (string, error)
}

type RunOptions struct {
	URLs *URLBuilder
	// Login opens the first page and waits for Enter on In before scraping.
	Login      bool
	In         io.Reader
	Out        io.Writer
	PageDelay  time.Duration
	Attempts   uint
	RetryDelay time.Duration
	// Progress receives the progress bar; nil hides it.
	Progress io.Writer
	Log      zerolog.Logger
}

type Result struct {
	Saved  []Job
	Failed []Job
}

// Run captures each job's page in order. A job that still fails after the
// configured attempts is reported in Result.Failed. Run stops early only
// when ctx is done or a page cannot be written.
func Run(ctx context.Context, browser Browser, jobs []Job, opts RunOptions) (Result, error) {
	var result Result
	if len(jobs) == 0 {
		return result, nil
	}
	if opts.URLs == nil {
		return result, fmt.Errorf("no url template configured")
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}

	if opts.Login {
		if err := login(ctx, browser, jobs[0], opts); err != nil {
			return result, err
		}
	}

	limit := rate.Inf
	if opts.PageDelay > 0 {
		limit = rate.Every(opts.PageDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Scraping pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
	)

	for _, job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		src, err := capture(ctx, browser, job, opts)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			opts.Log.Error().Err(err).Str("page", job.Path).Msg("giving up on page")
			result.Failed = append(result.Failed, job)
			bar.Add(1)
			continue
		}

		if err := writePage(job.Path, src); err != nil {
			return result, err
		}
		opts.Log.Debug().Str("page", job.Path).Int("bytes", len(src)).Msg("saved page")
		result.Saved = append(result.Saved, job)
		bar.Add(1)
	}
	bar.Finish()
	return result, nil
}

func login(ctx context.Context, browser Browser, first Job, opts RunOptions) error {
	url, err := opts.URLs.URL(first)
	if err != nil {
		return err
	}
	if err := browser.Navigate(ctx, url); err != nil {
		return fmt.Errorf("opening login page: %w", err)
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintln(out, "Log in to the dashboard in the browser window, then press Enter to start scraping.")
	if opts.In == nil {
		return nil
	}
	if _, err := bufio.NewReader(opts.In).ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("waiting for login: %w", err)
	}
	return ctx.Err()
}

func capture(ctx context.Context, browser Browser, job Job, opts RunOptions) (string, error) {
	url, err := opts.URLs.URL(job)
	if err != nil {
		return "", err
	}

	var src string
	err = retry.Do(
		func() error {
			if err := browser.Navigate(ctx, url); err != nil {
				return err
			}
			s, err := browser.PageSource(ctx)
			if err != nil {
				return err
			}
			if len(s) <= MinPageSize {
				return errEmptyPage
			}
			src = s
			return nil
		},
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			opts.Log.Warn().Err(err).Uint("attempt", n+1).Str("url", url).Msg("retrying page")
		}),
	)
	if err != nil {
		return "", fmt.Errorf("capturing %s: %w", url, err)
	}
	return src, nil
}

func writePage(path, src string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
