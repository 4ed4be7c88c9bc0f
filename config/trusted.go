package config

import (
	"github.com/Masterminds/semver"
	"github.com/safedep/dry/log"
)

// IsTrustedModule reports whether origin (optionally at a known version) is
// present in cfg.TrustedModules (spec.md §4.1 filesystem/network/command
// resolution orders: "origin is in the trusted-modules list → allow").
//
// A trusted-module entry with no VersionRange trusts every version of the
// named module. An entry with a VersionRange only trusts versions
// satisfying it — a version-range match requires the caller to supply a
// non-empty version; if version is unknown, only unscoped entries match.
func IsTrustedModule(modules []TrustedModule, origin, version string) bool {
	if origin == "" {
		return false
	}

	for _, m := range modules {
		if m.Name != origin {
			continue
		}

		if m.VersionRange == "" {
			return true
		}

		if version == "" {
			continue
		}

		constraint, err := semver.NewConstraint(m.VersionRange)
		if err != nil {
			log.Warnf("firewall: invalid version_range %q for trusted module %s: %v", m.VersionRange, m.Name, err)
			continue
		}

		v, err := semver.NewVersion(version)
		if err != nil {
			log.Warnf("firewall: invalid version %q for module %s: %v", version, origin, err)
			continue
		}

		if constraint.Check(v) {
			return true
		}
	}

	return false
}
