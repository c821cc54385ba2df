package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/meghashyamc/migemosearch/config"
	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/services/datadir"
	"github.com/meghashyamc/migemosearch/services/expand"
	"github.com/meghashyamc/migemosearch/services/i18n"
	"github.com/meghashyamc/migemosearch/services/launch"
	"github.com/meghashyamc/migemosearch/services/query"
	"github.com/meghashyamc/migemosearch/services/search"
	"github.com/meghashyamc/migemosearch/services/settings"
)

const (
	migemoSDKDir       = "MigemoSDK"
	dictionaryFileName = "migemo-dict"
)

type Initializable interface {
	Init(ctx context.Context, initContext InitContext) error
}

type Queryable interface {
	Query(ctx context.Context, text string) []query.Record
}

// Finder answers every call, for hosts whose callers are independent of each other.
type Finder interface {
	Find(ctx context.Context, text string) []query.Record
}

type MenuProvider interface {
	ContextMenus(record query.Record) []query.Record
}

type SettingsProvider interface {
	Settings() *settings.Manager
	Save() error
}

// InitContext is what a host hands the plugin. Nil collaborators fall back to the system ones.
type InitContext struct {
	Config          *config.Config
	Logger          logger.Logger
	PluginDirectory string

	Notifier  launch.Notifier
	Opener    launch.Opener
	Runner    launch.Runner
	Clipboard launch.Clipboard
	// Backend replaces the one chosen by backend.mode.
	Backend search.Backend
}

type Plugin struct {
	logger     logger.Logger
	kvDB       *kvdb.BoltDB
	searchDB   *searchdb.BleveDB
	settings   *settings.Manager
	translator i18n.Translator
	pipeline   *query.Pipeline
	runner     launch.Runner
	notifier   launch.Notifier
}

var (
	_ Initializable    = (*Plugin)(nil)
	_ Queryable        = (*Plugin)(nil)
	_ Finder           = (*Plugin)(nil)
	_ MenuProvider     = (*Plugin)(nil)
	_ SettingsProvider = (*Plugin)(nil)
)

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Init(ctx context.Context, initContext InitContext) error {
	cfg := initContext.Config
	if cfg == nil {
		return errors.New("plugin needs a config")
	}
	p.logger = initContext.Logger
	if p.logger == nil {
		p.logger = logger.New()
	}
	p.logger.Info("init started", "plugin_id", cfg.GetPluginID())

	storagePath := cfg.GetStoragePath()
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		p.logger.Error("could not create storage directory", "path", storagePath, "err", err.Error())
		return fmt.Errorf("could not create storage directory: %w", err)
	}

	encoding := cfg.GetDictEncoding()
	dictDir := filepath.Join(migemoSDKDir, "dict", encoding)
	pluginDirectory := initContext.PluginDirectory
	if pluginDirectory == "" {
		pluginDirectory = cfg.GetPluginDirectory()
	}
	if err := datadir.Validate(filepath.Join(pluginDirectory, dictDir), filepath.Join(storagePath, dictDir)); err != nil {
		p.logger.Warn("could not place bundled dictionary", "plugin_directory", pluginDirectory, "err", err.Error())
	}

	var err error
	p.translator, err = i18n.New(cfg.GetLocale())
	if err != nil {
		p.logger.Error("could not load translations", "err", err.Error())
		return err
	}

	if p.kvDB, err = kvdb.New(p.logger, cfg); err != nil {
		return err
	}

	p.settings = settings.NewManager(p.logger, p.kvDB, cfg.GetPluginID())
	if err := p.settings.Load(); err != nil {
		p.Close()
		return err
	}

	dictionary := expand.NewDictionary(p.logger, p.kvDB, cfg.GetMaxDictionaryWords())
	dictPath := filepath.Join(storagePath, dictDir, dictionaryFileName)
	if err := dictionary.EnsureImported(dictPath, encoding); err != nil {
		p.logger.Error("could not import dictionary", "path", dictPath, "err", err.Error())
		p.Close()
		return err
	}

	backend, err := p.backend(cfg, initContext.Backend)
	if err != nil {
		p.Close()
		return err
	}

	p.notifier = initContext.Notifier
	if p.notifier == nil {
		p.notifier = NewLogNotifier(p.logger)
	}
	p.runner = initContext.Runner
	if p.runner == nil {
		p.runner = launch.SystemRunner{}
	}
	opener := initContext.Opener
	if opener == nil {
		opener = launch.SystemOpener{}
	}
	clipboard := initContext.Clipboard
	if clipboard == nil {
		clipboard = launch.SystemClipboard{}
	}

	p.pipeline = query.New(p.logger, query.Options{
		SettleWindow:       cfg.GetSettleWindow(),
		ExpansionThreshold: cfg.GetExpansionThreshold(),
		DispatchTimeout:    cfg.GetDispatchTimeout(),
	}, query.Dependencies{
		Expander:   dictionary,
		Backend:    backend,
		Settings:   p.settings,
		Translator: p.translator,
		Opener:     opener,
		Clipboard:  clipboard,
		Notifier:   p.notifier,
	})

	p.logger.Info("init completed", "backend_mode", cfg.GetBackendMode(), "dictionary", dictPath)
	return nil
}

func (p *Plugin) backend(cfg *config.Config, override search.Backend) (search.Backend, error) {
	if override != nil {
		return override, nil
	}

	switch mode := cfg.GetBackendMode(); mode {
	case config.BackendModeRemote:
		return search.NewRemote(p.logger, cfg.GetBackendURL(), nil), nil
	case config.BackendModeLocal:
		searchDB, err := searchdb.New(p.logger, cfg)
		if err != nil {
			return nil, fmt.Errorf("could not open local index: %w", err)
		}
		p.searchDB = searchDB
		return search.NewLocal(p.logger, searchDB), nil
	default:
		return nil, fmt.Errorf("unknown backend mode %q", mode)
	}
}

// Query submits text as a new query; an earlier query still settling is superseded.
func (p *Plugin) Query(ctx context.Context, text string) []query.Record {
	return p.pipeline.Submit(ctx, &query.Query{Text: text, ID: uuid.NewString()})
}

// Find runs text at once without settling; it neither supersedes nor is superseded by other queries.
func (p *Plugin) Find(ctx context.Context, text string) []query.Record {
	return p.pipeline.Dispatch(ctx, &query.Query{Text: text, ID: uuid.NewString()})
}

// ContextMenus offers the default and user-defined commands for file hits only.
func (p *Plugin) ContextMenus(record query.Record) []query.Record {
	hit := record.ContextData
	if hit == nil || hit.Type != search.HitTypeFile {
		return []query.Record{}
	}

	menus := append(launch.DefaultContextMenus(p.translator), p.settings.Get().ContextMenus...)
	records := make([]query.Record, 0, len(menus))
	for _, menu := range menus {
		path := hit.Path
		records = append(records, query.Record{
			Title:    menu.Name,
			IconPath: menu.ImagePath,
			Action: func() (bool, error) {
				argument := launch.ExpandArgument(menu.Argument, path, query.ParentDir(path))
				if err := p.runner.Run(menu.Command, argument); err != nil {
					p.logger.Warn("could not run context menu command", "command", menu.Command, "argument", argument, "err", err.Error())
					p.notifier.ShowMsg(fmt.Sprintf(p.translator.T("cannot_start"), path), "")
					return false, nil
				}
				return true, nil
			},
		})
	}

	return records
}

func (p *Plugin) Settings() *settings.Manager {
	return p.settings
}

func (p *Plugin) Save() error {
	return p.settings.Save()
}

func (p *Plugin) Title() string {
	return p.translator.T("plugin_name")
}

func (p *Plugin) Description() string {
	return p.translator.T("plugin_description")
}

func (p *Plugin) Translator() i18n.Translator {
	return p.translator
}

func (p *Plugin) Close() error {
	var errs []error
	if p.searchDB != nil {
		errs = append(errs, p.searchDB.Close())
		p.searchDB = nil
	}
	if p.kvDB != nil {
		errs = append(errs, p.kvDB.Close())
		p.kvDB = nil
	}
	return errors.Join(errs...)
}
