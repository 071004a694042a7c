package setting

import "encoding/json"

// 设置项键名
const (
	KeySearchEngines                  = "searchEngines"
	KeyQuickLinks                     = "quickLinks"
	KeyCurrentSearchEngine            = "currentSearchEngine"
	KeyOpenSearchInNewTab             = "openSearchInNewTab"
	KeyLocale                         = "locale"
	KeyDeletedBuiltinIDs              = "deletedBuiltinIds"
	KeySkipConfirmDeleteQuickLinks    = "skipConfirmDeleteQuickLinks"
	KeySkipConfirmDeleteSearchEngines = "skipConfirmDeleteSearchEngines"
)

// KnownKeys lists every setting carried by a snapshot, in export order.
var KnownKeys = []string{
	KeySearchEngines,
	KeyQuickLinks,
	KeyCurrentSearchEngine,
	KeyOpenSearchInNewTab,
	KeyLocale,
	KeyDeletedBuiltinIDs,
	KeySkipConfirmDeleteQuickLinks,
	KeySkipConfirmDeleteSearchEngines,
}

// Snapshot 导出的设置文件
type Snapshot struct {
	Version    string                     `json:"version" validate:"required,semver"`
	ExportedAt string                     `json:"exportedAt"`
	Settings   map[string]json.RawMessage `json:"settings" validate:"required"`
}

// SearchEngine is validated on import; unknown fields survive in the stored value.
type SearchEngine struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

// QuickLink is validated on import; unknown fields survive in the stored value.
type QuickLink struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	URL     string `json:"url" validate:"required"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// Summary 当前设置概览
type Summary struct {
	SearchEngines       int    `json:"searchEngines"`
	QuickLinks          int    `json:"quickLinks"`
	EnabledQuickLinks   int    `json:"enabledQuickLinks"`
	CurrentSearchEngine string `json:"currentSearchEngine,omitempty"`
	Locale              string `json:"locale,omitempty"`
}
