package configadapter

import (
	"strings"

	"github.com/goliatone/go-autobuild/catalog"
)

// NewCatalog filters the plugins of source through a config map keyed by
// plugin name. A plugin entry is a bool or optional bool toggling it, or a
// map with "enabled" and "description" keys. Plugins without an entry, or
// with an unset toggle, stay enabled. Advertisement order is preserved.
func NewCatalog(source *catalog.Catalog, data map[string]any, opts ...Option) *catalog.Catalog {
	cfg := newOptions(opts)
	settings := map[string]pluginSetting{}
	for key, value := range data {
		name := normalizeKey(key, cfg.delimiter)
		if name == "" {
			continue
		}
		if setting, ok := settingFromValue(value); ok {
			settings[name] = setting
		}
	}

	out := catalog.New()
	for _, def := range source.List() {
		setting := settings[def.Name]
		if setting.disabled {
			continue
		}
		if setting.description != "" {
			def.Description = setting.description
		}
		_ = out.Advertise(def)
	}
	return out
}

type pluginSetting struct {
	disabled    bool
	description string
}

func settingFromValue(value any) (pluginSetting, bool) {
	switch typed := value.(type) {
	case map[string]any:
		setting := pluginSetting{}
		if enabled, ok := leafValue(typed["enabled"]); ok {
			if on, isBool := enabled.(bool); isBool {
				setting.disabled = !on
			}
		}
		if desc, ok := typed["description"].(string); ok {
			setting.description = strings.TrimSpace(desc)
		}
		return setting, true
	case map[string]string:
		return pluginSetting{description: strings.TrimSpace(typed["description"])}, true
	case string:
		return pluginSetting{description: strings.TrimSpace(typed)}, true
	default:
		enabled, ok := leafValue(value)
		if !ok {
			return pluginSetting{}, false
		}
		on, isBool := enabled.(bool)
		if !isBool {
			return pluginSetting{}, false
		}
		return pluginSetting{disabled: !on}, true
	}
}
