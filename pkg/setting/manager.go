package setting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/QuickTabNavigator/QuickTabNavigator/application/constants"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/serializer"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-version"
	"github.com/samber/lo"
)

var (
	ErrSnapshotInvalid     = errors.New("invalid settings snapshot")
	ErrSnapshotTooNew      = errors.New("settings snapshot is from a newer version")
	ErrSnapshotMissingData = errors.New("settings snapshot contains no known settings")
)

// Manager exports and imports settings snapshots. It is the producer and consumer of the
// JSON bodies stored on WebDAV.
type Manager struct {
	store    Store
	l        logging.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewManager creates a snapshot manager on top of store.
func NewManager(store Store, l logging.Logger) *Manager {
	return &Manager{
		store:    store,
		l:        l.CopyWithPrefix("[Settings]"),
		validate: validator.New(),
		now:      time.Now,
	}
}

// Export collects every known setting present in the store.
func (m *Manager) Export(ctx context.Context) *Snapshot {
	snapshot := &Snapshot{
		Version:    constants.SnapshotVersion,
		ExportedAt: m.now().UTC().Format(time.RFC3339),
		Settings:   make(map[string]json.RawMessage),
	}

	for _, key := range KnownKeys {
		if raw, ok := m.store.Get(ctx, key); ok {
			snapshot.Settings[key] = raw
		}
	}

	return snapshot
}

// ExportJSON returns the indented JSON of Export.
func (m *Manager) ExportJSON(ctx context.Context) (string, error) {
	res, err := json.MarshalIndent(m.Export(ctx), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode settings snapshot: %w", err)
	}

	return string(res), nil
}

// ImportJSON validates a snapshot and writes its known settings. Unknown keys are ignored;
// settings absent from the snapshot are left untouched.
func (m *Manager) ImportJSON(ctx context.Context, content string) error {
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(content), &snapshot); err != nil {
		return snapshotError("Settings file is not valid JSON", err)
	}

	if err := m.validate.Struct(&snapshot); err != nil {
		return snapshotError("Settings file is missing required fields", err)
	}

	if err := checkCompatible(snapshot.Version); err != nil {
		return err
	}

	settings := lo.PickByKeys(snapshot.Settings, KnownKeys)
	if len(settings) == 0 {
		return snapshotError("Settings file contains no known settings", ErrSnapshotMissingData)
	}

	if raw, ok := settings[KeySearchEngines]; ok {
		if err := validateList[SearchEngine](m.validate, raw); err != nil {
			return snapshotError("Invalid search engines", err)
		}
	}

	if raw, ok := settings[KeyQuickLinks]; ok {
		if err := validateList[QuickLink](m.validate, raw); err != nil {
			return snapshotError("Invalid quick links", err)
		}

		normalized, err := normalizeQuickLinks(raw)
		if err != nil {
			return snapshotError("Invalid quick links", err)
		}
		settings[KeyQuickLinks] = normalized
	}

	for _, key := range KnownKeys {
		raw, ok := settings[key]
		if !ok {
			continue
		}

		if err := m.store.Set(ctx, key, raw); err != nil {
			return err
		}
	}

	m.l.Info("Imported %d settings from snapshot version %s.", len(settings), snapshot.Version)
	return nil
}

// Summary counts the configured search engines and quick links.
func (m *Manager) Summary(ctx context.Context) Summary {
	engines := GetStoredValue(ctx, m.store, KeySearchEngines, []json.RawMessage{})
	links := GetStoredValue(ctx, m.store, KeyQuickLinks, []QuickLink{})

	return Summary{
		SearchEngines: len(engines),
		QuickLinks:    len(links),
		EnabledQuickLinks: lo.CountBy(links, func(l QuickLink) bool {
			return l.Enabled == nil || *l.Enabled
		}),
		CurrentSearchEngine: GetStoredValue(ctx, m.store, KeyCurrentSearchEngine, ""),
		Locale:              GetStoredValue(ctx, m.store, KeyLocale, ""),
	}
}

// Reset removes every known setting so that defaults apply again.
func (m *Manager) Reset(ctx context.Context) error {
	if err := m.store.Remove(ctx, KnownKeys...); err != nil {
		return err
	}

	m.l.Info("All settings are reset.")
	return nil
}

type listOf[T any] struct {
	Items []T `validate:"dive"`
}

func validateList[T any](v *validator.Validate, raw json.RawMessage) error {
	var list listOf[T]
	if err := json.Unmarshal(raw, &list.Items); err != nil {
		return err
	}

	return v.Struct(list)
}

// checkCompatible rejects snapshots written by a newer major version.
func checkCompatible(v string) error {
	snapshotVersion, err := version.NewVersion(v)
	if err != nil {
		return snapshotError("Invalid snapshot version", err)
	}

	current := version.Must(version.NewVersion(constants.SnapshotVersion))
	if snapshotVersion.Segments()[0] > current.Segments()[0] {
		return snapshotError(
			fmt.Sprintf("Settings snapshot version %s is not supported by this version (%s)", v, constants.SnapshotVersion),
			ErrSnapshotTooNew,
		)
	}

	return nil
}

// normalizeQuickLinks enables links that do not say otherwise, keeping any other field.
func normalizeQuickLinks(raw json.RawMessage) (json.RawMessage, error) {
	var links []map[string]any
	if err := json.Unmarshal(raw, &links); err != nil {
		return nil, err
	}

	for _, link := range links {
		if _, ok := link["enabled"]; !ok {
			link["enabled"] = true
		}
	}

	return json.Marshal(links)
}

func snapshotError(msg string, err error) error {
	return serializer.NewError(serializer.CodeSnapshotInvalid, msg, fmt.Errorf("%w: %w", ErrSnapshotInvalid, err))
}
