package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meghashyamc/migemosearch/config"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/services/query"
	"github.com/meghashyamc/migemosearch/services/search"
	"github.com/meghashyamc/migemosearch/services/settings"
	"github.com/stretchr/testify/require"
)

const testDictionary = "; test dictionary\nかいしゃ\t会社\t開始や\nかいぎ\t会議\n"

type runCall struct {
	command  string
	argument string
}

type fakeRunner struct {
	err   error
	calls []runCall
}

func (r *fakeRunner) Run(command string, argument string) error {
	r.calls = append(r.calls, runCall{command: command, argument: argument})
	return r.err
}

type testPlugin struct {
	*Plugin
	runner   *fakeRunner
	notifier *LogNotifier
	storage  string
}

func newTestConfig(t *testing.T, assert *require.Assertions) *config.Config {
	t.Helper()
	cfg, err := config.Load("test")
	assert.NoError(err, "could not load config")

	storage := t.TempDir()
	cfg.Set("database.storage_path", storage)
	cfg.Set("database.kvdb_path", filepath.Join(storage, "kv.db"))
	cfg.Set("plugin.locale", "en")
	return cfg
}

func newPluginDirectory(t *testing.T, assert *require.Assertions) string {
	t.Helper()
	pluginDir := t.TempDir()
	dictDir := filepath.Join(pluginDir, migemoSDKDir, "dict", "utf-8")
	assert.NoError(os.MkdirAll(dictDir, 0o755))
	assert.NoError(os.WriteFile(filepath.Join(dictDir, dictionaryFileName), []byte(testDictionary), 0o644))
	return pluginDir
}

func newTestPlugin(t *testing.T, assert *require.Assertions) *testPlugin {
	t.Helper()
	cfg := newTestConfig(t, assert)
	log := logger.Discard()

	tp := &testPlugin{
		Plugin:   New(),
		runner:   &fakeRunner{},
		notifier: NewLogNotifier(log),
		storage:  cfg.GetStoragePath(),
	}
	assert.NoError(tp.Init(context.Background(), InitContext{
		Config:          cfg,
		Logger:          log,
		PluginDirectory: newPluginDirectory(t, assert),
		Notifier:        tp.notifier,
		Runner:          tp.runner,
	}))
	t.Cleanup(func() { tp.Close() })
	return tp
}

func TestInitPlacesDictionaryInStorage(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)

	data, err := os.ReadFile(filepath.Join(tp.storage, migemoSDKDir, "dict", "utf-8", dictionaryFileName))
	assert.NoError(err)
	assert.Equal(testDictionary, string(data))
	assert.NoDirExists(filepath.Join(tp.storage, migemoSDKDir, "x64"))
	assert.NoDirExists(filepath.Join(tp.storage, migemoSDKDir, "x86"))
	assert.Equal("Migemo Search", tp.Title())
	assert.NotEmpty(tp.Description())
}

func TestInitWithoutBundledDictionary(t *testing.T) {
	assert := require.New(t)
	cfg := newTestConfig(t, assert)

	p := New()
	assert.NoError(p.Init(context.Background(), InitContext{Config: cfg, Logger: logger.Discard(), PluginDirectory: t.TempDir()}))
	defer p.Close()

	assert.NotNil(p.pipeline)
}

func TestInitRequiresConfig(t *testing.T) {
	assert := require.New(t)
	assert.Error(New().Init(context.Background(), InitContext{}))
}

func TestInitUnknownBackendMode(t *testing.T) {
	assert := require.New(t)
	cfg := newTestConfig(t, assert)
	cfg.Set("backend.mode", "carrier-pigeon")

	p := New()
	assert.Error(p.Init(context.Background(), InitContext{Config: cfg, Logger: logger.Discard(), PluginDirectory: t.TempDir()}))
	assert.NoError(p.Close())
}

func TestQueryExpandsThroughDictionary(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)

	assert.NoError(tp.searchDB.BuildIndex([]*searchdb.Document{
		{ID: "/docs/会社案内.txt", Path: "/docs/会社案内.txt", Name: "会社案内.txt", Parent: "/docs", Type: searchdb.TypeFile, ModTime: time.Now()},
		{ID: "/docs/kaishain.csv", Path: "/docs/kaishain.csv", Name: "kaishain.csv", Parent: "/docs", Type: searchdb.TypeFile, ModTime: time.Now()},
		{ID: "/docs/report.pdf", Path: "/docs/report.pdf", Name: "report.pdf", Parent: "/docs", Type: searchdb.TypeFile, ModTime: time.Now()},
	}))

	records := tp.Query(context.Background(), "kaisha")

	titles := make([]string, 0, len(records))
	for _, record := range records {
		titles = append(titles, record.Title)
		assert.Equal(query.FailureNone, record.Failure)
	}
	assert.Equal([]string{"kaishain.csv", "会社案内.txt"}, titles)
}

func TestFindConcurrentCallsEachAnswer(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)

	assert.NoError(tp.searchDB.BuildIndex([]*searchdb.Document{
		{ID: "/docs/会社案内.txt", Path: "/docs/会社案内.txt", Name: "会社案内.txt", Parent: "/docs", Type: searchdb.TypeFile, ModTime: time.Now()},
		{ID: "/docs/会議録.txt", Path: "/docs/会議録.txt", Name: "会議録.txt", Parent: "/docs", Type: searchdb.TypeFile, ModTime: time.Now()},
	}))

	tests := []struct {
		text  string
		title string
	}{
		{text: "kaisha", title: "会社案内.txt"},
		{text: "kaigi", title: "会議録.txt"},
	}

	results := make([]chan []query.Record, len(tests))
	for i, tt := range tests {
		results[i] = make(chan []query.Record, 1)
		go func() { results[i] <- tp.Find(context.Background(), tt.text) }()
	}

	for i, tt := range tests {
		records := <-results[i]
		assert.Len(records, 1, tt.text)
		assert.Equal(tt.title, records[0].Title)
	}
}

func TestQueryEmptyText(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)

	assert.Empty(tp.Query(context.Background(), "  "))
}

func TestQueryClosedIndexReportsNotRunning(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)
	assert.NoError(tp.searchDB.Close())
	tp.searchDB = nil

	records := tp.Query(context.Background(), "kaisha")
	assert.Len(records, 1)
	assert.Equal(query.FailureBackendUnavailable, records[0].Failure)
	assert.Equal("Search index service is not running", records[0].Title)
}

func TestContextMenusOnlyForFiles(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)

	assert.Empty(tp.ContextMenus(query.Record{Title: "diagnostic"}))
	assert.Empty(tp.ContextMenus(query.Record{ContextData: &search.Hit{Path: "/docs", Type: search.HitTypeFolder}}))
}

func TestContextMenusIncludeUserEntries(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)
	tp.Settings().Update(func(s *settings.Settings) {
		s.ContextMenus = append(s.ContextMenus, settings.ContextMenu{
			Name:      "Edit",
			Command:   "vim",
			Argument:  `"{path}"`,
			ImagePath: "Images/edit.png",
		})
	})

	menus := tp.ContextMenus(query.Record{ContextData: &search.Hit{Path: "/docs/report.pdf", Type: search.HitTypeFile}})
	assert.Len(menus, 2)
	assert.Equal("Open containing folder", menus[0].Title)
	assert.Equal("Edit", menus[1].Title)
	assert.Equal("Images/edit.png", menus[1].IconPath)

	hide, err := menus[1].Action()
	assert.NoError(err)
	assert.True(hide)
	assert.Equal([]runCall{{command: "vim", argument: `"/docs/report.pdf"`}}, tp.runner.calls)
	assert.Empty(tp.notifier.Drain())
}

func TestContextMenuFailureShowsMessage(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)
	tp.runner.err = errors.New("exec: not found")

	menus := tp.ContextMenus(query.Record{ContextData: &search.Hit{Path: "/docs/report.pdf", Type: search.HitTypeFile}})
	hide, err := menus[0].Action()

	assert.NoError(err)
	assert.False(hide)
	assert.Equal([]Message{{Title: "Can't start /docs/report.pdf"}}, tp.notifier.Drain())
}

func TestSaveRoundTripsSettings(t *testing.T) {
	assert := require.New(t)
	tp := newTestPlugin(t, assert)

	tp.Settings().Update(func(s *settings.Settings) {
		s.MaxSearchCount = 7
		s.UseLocationAsWorkingDir = true
	})
	assert.NoError(tp.Save())

	reloaded := settings.NewManager(logger.Discard(), tp.kvDB, "migemosearch-test")
	assert.NoError(reloaded.Load())
	assert.Equal(7, reloaded.Get().MaxSearchCount)
	assert.True(reloaded.Get().UseLocationAsWorkingDir)
}

func TestLogNotifierDrain(t *testing.T) {
	assert := require.New(t)
	notifier := NewLogNotifier(logger.Discard())

	notifier.ShowMsg("a", "b")
	notifier.ShowMsg("c", "")

	assert.Equal([]Message{{Title: "a", SubTitle: "b"}, {Title: "c"}}, notifier.Drain())
	assert.Empty(notifier.Drain())
}
