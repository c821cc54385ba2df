package query

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/services/expand"
	"github.com/meghashyamc/migemosearch/services/i18n"
	"github.com/meghashyamc/migemosearch/services/launch"
	"github.com/meghashyamc/migemosearch/services/search"
	"github.com/meghashyamc/migemosearch/services/settings"
)

const (
	DefaultSettleWindow       = 200 * time.Millisecond
	DefaultExpansionThreshold = 3
	fallbackMaxCount          = 50
)

// Query is compared by identity: two queries with the same text are still different submissions.
type Query struct {
	Text string
	ID   string
}

type SettingsSource interface {
	Get() settings.Settings
}

type Options struct {
	SettleWindow       time.Duration
	ExpansionThreshold int
	// DispatchTimeout bounds the expansion and backend call; zero means unbounded.
	DispatchTimeout time.Duration
}

type Dependencies struct {
	Expander   expand.Expander
	Backend    search.Backend
	Settings   SettingsSource
	Translator i18n.Translator
	Opener     launch.Opener
	Clipboard  launch.Clipboard
	Notifier   launch.Notifier
}

type Pipeline struct {
	logger  logger.Logger
	options Options
	deps    Dependencies

	mu     sync.Mutex
	latest *Query
}

func New(logger logger.Logger, options Options, deps Dependencies) *Pipeline {
	if options.SettleWindow <= 0 {
		options.SettleWindow = DefaultSettleWindow
	}
	if options.ExpansionThreshold <= 0 {
		options.ExpansionThreshold = DefaultExpansionThreshold
	}
	return &Pipeline{logger: logger, options: options, deps: deps}
}

// Submit blocks until q settles or is superseded. Superseded and empty queries yield an
// empty list without touching the expander or the backend.
func (p *Pipeline) Submit(ctx context.Context, q *Query) []Record {
	if q == nil {
		return []Record{}
	}

	p.mu.Lock()
	p.latest = q
	p.mu.Unlock()

	if strings.TrimSpace(q.Text) == "" {
		return []Record{}
	}

	timer := time.NewTimer(p.options.SettleWindow)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return []Record{}
	}

	if !p.isLatest(q) {
		p.logger.Debug("query superseded", "query_id", q.ID)
		return []Record{}
	}

	return p.dispatch(ctx, q)
}

// Dispatch runs q at once, without settling or checking for a newer query. Concurrent
// callers that each need their own answer use it instead of Submit; it never supersedes
// a pending Submit.
func (p *Pipeline) Dispatch(ctx context.Context, q *Query) []Record {
	if q == nil || strings.TrimSpace(q.Text) == "" {
		return []Record{}
	}
	return p.dispatch(ctx, q)
}

func (p *Pipeline) isLatest(q *Query) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.latest == q
}

func (p *Pipeline) dispatch(ctx context.Context, q *Query) []Record {
	defer p.deps.Backend.Reset()

	current := p.deps.Settings.Get()
	maxCount := NormalizeMaxCount(current.MaxSearchCount)

	if p.options.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.options.DispatchTimeout)
		defer cancel()
	}

	effective, err := EffectiveText(q.Text, p.options.ExpansionThreshold, p.deps.Expander)
	if err != nil {
		p.logger.Error("could not expand query", "query_id", q.ID, "err", err.Error())
		return p.failureRecords(err, debug.Stack())
	}

	hits, err := p.deps.Backend.Search(ctx, effective, maxCount)
	if err != nil {
		return p.failureRecords(err, debug.Stack())
	}
	if len(hits) > maxCount {
		hits = hits[:maxCount]
	}

	p.logger.Debug("query dispatched", "query_id", q.ID, "effective_text", effective, "hits", len(hits))

	records := make([]Record, 0, len(hits))
	for _, hit := range hits {
		records = append(records, p.hitRecord(hit, effective, current.UseLocationAsWorkingDir))
	}

	return records
}

// NormalizeMaxCount replaces a non-positive configured count with 50.
func NormalizeMaxCount(configured int) int {
	if configured <= 0 {
		return fallbackMaxCount
	}
	return configured
}

// EffectiveText is what the backend receives: the raw text below threshold characters,
// otherwise the expanded pattern marked with the pattern prefix.
func EffectiveText(text string, threshold int, expander expand.Expander) (string, error) {
	if utf8.RuneCountInString(text) < threshold {
		return text, nil
	}

	pattern, err := expander.Expand(text)
	if err != nil {
		return "", fmt.Errorf("could not expand %q: %w", text, err)
	}
	return searchdb.PatternPrefix + pattern, nil
}

func (p *Pipeline) hitRecord(hit search.Hit, effective string, useLocationAsWorkingDir bool) Record {
	path := hit.Path

	workingDir := ""
	if useLocationAsWorkingDir {
		workingDir = ParentDir(path)
	}

	return Record{
		Title:       FileName(path),
		SubTitle:    effective,
		IconPath:    path,
		ContextData: &hit,
		Action: func() (bool, error) {
			err := p.deps.Opener.Open(path, workingDir)
			if err == nil {
				return true, nil
			}
			if errors.Is(err, launch.ErrCannotLaunch) {
				p.logger.Warn("could not open file", "path", path, "err", err.Error())
				p.deps.Notifier.ShowMsg(fmt.Sprintf("Plugin: %s", p.deps.Translator.T("plugin_name")), p.deps.Translator.T("cannot_open"))
				return false, nil
			}
			return false, err
		},
	}
}

// failureRecords turns a dispatch failure into the single diagnostic record shown instead of hits.
// stack is taken where dispatch saw the failure and is copied along with err.
func (p *Pipeline) failureRecords(err error, stack []byte) []Record {
	switch {
	case errors.Is(err, search.ErrBackendUnavailable):
		p.logger.Warn("search backend unavailable", "err", err.Error())
		return []Record{{
			Title:    p.deps.Translator.T("is_not_running"),
			IconPath: warningImagePath,
			Failure:  FailureBackendUnavailable,
		}}

	case p.options.DispatchTimeout > 0 && errors.Is(err, context.DeadlineExceeded):
		p.logger.Warn("search dispatch timed out", "timeout", p.options.DispatchTimeout.String(), "err", err.Error())
		return []Record{{
			Title:    p.deps.Translator.T("query_timeout"),
			SubTitle: err.Error(),
			IconPath: warningImagePath,
			Failure:  FailureBackendTimeout,
		}}

	case errors.Is(err, context.Canceled):
		// The caller went away; nobody will see a diagnostic.
		return []Record{}
	}

	p.logger.Error("search failed", "err", err.Error())
	detail := err.Error() + "\n" + string(stack)
	return []Record{{
		Title:    p.deps.Translator.T("query_error"),
		SubTitle: err.Error(),
		IconPath: errorImagePath,
		Failure:  FailureBackendError,
		Action: func() (bool, error) {
			if err := p.deps.Clipboard.WriteAll(detail); err != nil {
				p.logger.Warn("could not copy error details", "err", err.Error())
			}
			p.deps.Notifier.ShowMsg(p.deps.Translator.T("copied"), "")
			return false, nil
		},
	}}
}
