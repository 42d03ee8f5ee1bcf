// Package module describes software modules jobs run against
package module

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/smoors/test-suite/internal/utils"
)

// Descriptor identifies a software module and whether it needs GPU
// acceleration to run.
type Descriptor struct {
	Name                       string
	RequiresDeviceAcceleration bool
}

// Detect builds a descriptor from a module name. Device acceleration is
// recognized from CUDA-style toolchain markers in the normalized name
// (e.g. "GROMACS/2023.1-CUDA-12.1").
func Detect(name string) Descriptor {
	normalized := strings.ToLower(utils.NormalizeNameVersion(name))
	return Descriptor{
		Name:                       name,
		RequiresDeviceAcceleration: strings.Contains(normalized, "cuda"),
	}
}

// Allowed reports whether name is in the allowed list. An empty list
// allows every module. Names are compared after normalization, so
// "GROMACS=2023.1" and "GROMACS/2023.1" match.
func Allowed(name string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	normalized := utils.NormalizeNameVersion(name)
	for _, candidate := range allowed {
		if utils.NormalizeNameVersion(candidate) == normalized {
			return true
		}
	}
	return false
}

// Newest picks the spec with the highest version among "name/version"
// specs. Versions are compared as semantic versions where possible, with
// a plain string comparison as fallback for non-semver versions. Returns
// the empty string for an empty input.
func Newest(specs []string) string {
	best := ""
	bestVersion := ""
	for _, spec := range specs {
		version := versionOf(spec)
		if best == "" || versionLess(bestVersion, version) {
			best = spec
			bestVersion = version
		}
	}
	return best
}

// versionOf extracts the version part of a normalized "name/version" spec.
// Specs without a version yield the empty string.
func versionOf(spec string) string {
	normalized := utils.NormalizeNameVersion(spec)
	idx := strings.Index(normalized, "/")
	if idx < 0 || idx == len(normalized)-1 {
		return ""
	}
	return normalized[idx+1:]
}

// versionLess reports whether version a sorts before version b.
func versionLess(a, b string) bool {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb) < 0
	}
	return a < b
}
