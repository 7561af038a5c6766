package config

// RuleSet holds selector conventions and transform toggles for a set of
// pages. Empty fields inherit from the defaults, which in turn fall back
// to the generator conventions built into the transforms.
type RuleSet struct {
	// HeadingSuffix is the id suffix that marks the references heading.
	HeadingSuffix string `yaml:"headingSuffix,omitempty"`

	// ReferencesID is the id of the rendered bibliography container.
	ReferencesID string `yaml:"referencesId,omitempty"`

	// ReferencesClass is the class of the rendered bibliography container.
	ReferencesClass string `yaml:"referencesClass,omitempty"`

	// EndnotesRole is the ARIA role marking an end-notes region.
	EndnotesRole string `yaml:"endnotesRole,omitempty"`

	// FootnotesID is the fixed id assigned to the footnotes container.
	FootnotesID string `yaml:"footnotesId,omitempty"`

	// WrapperID is the id assigned to the combined end-notes wrapper.
	WrapperID string `yaml:"wrapperId,omitempty"`

	// BaseURL overrides the site base URL for link classification.
	BaseURL string `yaml:"baseUrl,omitempty"`

	// IgnorePatterns are path patterns (glob syntax, matched against the
	// page path relative to the site directory) to skip during processing.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// File represents the structure of the .endnotes configuration file.
type File struct {
	// Defaults contains the rule set applied to every page unless
	// overridden for its directory.
	Defaults RuleSet `yaml:"defaults,omitempty"`

	// Dirs maps directory prefixes (relative to the site directory, e.g.
	// "posts/") to rule sets overriding the defaults for pages under them.
	Dirs map[string]RuleSet `yaml:"dirs,omitempty"`
}

// GetRuleSet returns the effective rule set for a page path relative to
// the site directory. It merges the longest matching directory override
// onto the defaults.
func (cf *File) GetRuleSet(pagePath string) RuleSet {
	result := cf.Defaults

	// Pick the most specific (longest) matching prefix so nested
	// directories can refine their parents.
	var best string
	for prefix := range cf.Dirs {
		if hasPathPrefix(pagePath, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return result
	}

	override := cf.Dirs[best]
	if override.HeadingSuffix != "" {
		result.HeadingSuffix = override.HeadingSuffix
	}
	if override.ReferencesID != "" {
		result.ReferencesID = override.ReferencesID
	}
	if override.ReferencesClass != "" {
		result.ReferencesClass = override.ReferencesClass
	}
	if override.EndnotesRole != "" {
		result.EndnotesRole = override.EndnotesRole
	}
	if override.FootnotesID != "" {
		result.FootnotesID = override.FootnotesID
	}
	if override.WrapperID != "" {
		result.WrapperID = override.WrapperID
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if len(override.IgnorePatterns) > 0 {
		result.IgnorePatterns = override.IgnorePatterns
	}

	return result
}

// MatchDir returns the directory prefix whose rule set applies to the
// given page path, or the empty string when only the defaults apply.
// The longest matching prefix wins, mirroring GetRuleSet.
func (cf *File) MatchDir(pagePath string) string {
	var best string
	for prefix := range cf.Dirs {
		if hasPathPrefix(pagePath, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	return best
}

// hasPathPrefix reports whether the slash-separated path starts with the
// given directory prefix. A trailing slash on the prefix is optional.
func hasPathPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	return len(path) >= len(prefix) && path[:len(prefix)] == prefix
}
