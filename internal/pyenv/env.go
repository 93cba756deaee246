// Package pyenv inspects the Python environment the models run in: the
// interpreter and framework versions, and the versions of a fixed
// watch-list of installed libraries.
package pyenv

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/ngenohkevin/sysinfo-agent/internal/cache"
)

// torchPackage is the pip name of the framework
const torchPackage = "torch"

// Env answers runtime and library queries for one interpreter. All answers
// are computed on first use and kept.
type Env struct {
	python    string
	timeout   time.Duration
	goos      string
	watchList []Library

	interp    cache.Lazy[Runtime]
	packages  cache.Lazy[Packages]
	libraries cache.Lazy[[]LibraryVersion]
}

// New creates an Env for the interpreter at python. A nil watchList uses
// DefaultWatchList.
func New(python string, timeout time.Duration, watchList []Library) *Env {
	if watchList == nil {
		watchList = DefaultWatchList
	}
	return &Env{
		python:    python,
		timeout:   timeout,
		goos:      runtime.GOOS,
		watchList: watchList,
	}
}

func (e *Env) queryContext() (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(context.Background(), e.timeout)
	}
	return context.WithCancel(context.Background())
}

// Packages returns every installed package, or an empty map if the package
// manager cannot be queried.
func (e *Env) Packages() Packages {
	return e.packages.Get(func() Packages {
		ctx, cancel := e.queryContext()
		defer cancel()

		pkgs, err := listPackages(ctx, e.python)
		if err != nil {
			log.Printf("[pyenv] package listing unavailable: %v", err)
			return Packages{}
		}
		return pkgs
	})
}

// Runtime returns interpreter, framework and CUDA toolkit versions, and
// the framework's view of CUDA when torch could be imported.
func (e *Env) Runtime() Runtime {
	return e.interp.Get(func() Runtime {
		rt := Runtime{PythonVersion: Unknown, TorchVersion: NotInstalled, CUDAVersion: NotAvail}

		ctx, cancel := e.queryContext()
		defer cancel()

		res, err := probeRuntime(ctx, e.python)
		if err != nil {
			log.Printf("[pyenv] runtime probe failed: %v", err)
		} else {
			if res.PythonVersion != "" {
				rt.PythonVersion = res.PythonVersion
			}
			if res.TorchVersion != "" {
				rt.TorchVersion = res.TorchVersion
				rt.TorchLoaded = true
				rt.CUDAAvailable = res.CUDAAvailable
				if res.CUDAAvailable && res.DeviceCount > 0 {
					rt.DeviceCount = res.DeviceCount
					rt.Device = res.Device
				}
			}
			if res.CUDAVersion != nil && *res.CUDAVersion != "" {
				rt.CUDAVersion = *res.CUDAVersion
			}
		}

		if rt.TorchVersion == NotInstalled {
			if v, ok := e.Packages()[torchPackage]; ok {
				rt.TorchVersion = v
			}
		}
		return rt
	})
}

// Libraries resolves the watch-list, in watch-list order.
func (e *Env) Libraries() []LibraryVersion {
	return e.libraries.Get(func() []LibraryVersion {
		pkgs := e.Packages()
		versions := make([]LibraryVersion, 0, len(e.watchList))
		for _, lib := range e.watchList {
			versions = append(versions, LibraryVersion{
				Key:     lib.Key(),
				Version: pkgs.Resolve(lib, e.goos),
			})
		}
		return versions
	})
}
