//go:build !ios && !android && (amd64 || arm64)

// Package platform describes how the GLib family of shared libraries is named
// on each operating system goglib can load them on.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit.
// The native runtime reads GObject and GValue fields at fixed 64-bit offsets.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// PointerSize is the size of a C pointer in bytes.
const PointerSize = unsafe.Sizeof(uintptr(0))

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

func init() {
	LibraryExtension = extensionFor(runtime.GOOS)
}

func extensionFor(goos string) string {
	switch goos {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// LibraryNames returns the file names a GLib library may be installed under,
// most specific first. name is the pkg-config style name ("gobject-2.0") and
// soVersion the library's interface version (0 for every GLib 2.x release).
// A negative soVersion only yields unversioned names.
//
//   - Linux:   "libgobject-2.0.so.0", "libgobject-2.0.so"
//   - macOS:   "libgobject-2.0.0.dylib", "libgobject-2.0.dylib"
//   - Windows: "libgobject-2.0-0.dll", "gobject-2.0-0.dll", "gobject-2.0.dll"
func LibraryNames(name string, soVersion int) []string {
	return libraryNames(runtime.GOOS, name, soVersion)
}

func libraryNames(goos, name string, soVersion int) []string {
	ext := extensionFor(goos)
	var names []string
	switch goos {
	case "darwin":
		if soVersion >= 0 {
			names = append(names, fmt.Sprintf("lib%s.%d%s", name, soVersion, ext))
		}
		names = append(names, fmt.Sprintf("lib%s%s", name, ext))
	case "windows":
		// MSYS2 keeps the lib prefix, gvsbuild and vcpkg drop it.
		if soVersion >= 0 {
			names = append(names,
				fmt.Sprintf("lib%s-%d%s", name, soVersion, ext),
				fmt.Sprintf("%s-%d%s", name, soVersion, ext))
		}
		names = append(names, fmt.Sprintf("%s%s", name, ext))
	default: // linux, freebsd
		if soVersion >= 0 {
			names = append(names, fmt.Sprintf("lib%s%s.%d", name, ext, soVersion))
		}
		names = append(names, fmt.Sprintf("lib%s%s", name, ext))
	}
	return names
}

// GOOS returns the current operating system.
func GOOS() string {
	return runtime.GOOS
}

// GOARCH returns the current architecture.
func GOARCH() string {
	return runtime.GOARCH
}
