package uimanager

import (
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/go-drift/viewbridge/pkg/errors"
)

// APIVersion is the controller contract version. Packages declaring a
// different major version are rejected.
const APIVersion = "v1.2.0"

// RootNodeClassName is the class name of root surfaces. Its controller is
// always a GroupController.
const RootNodeClassName = "RootNode"

// Registration describes one controller class. Names[0] is the primary
// class name and the rest are aliases; all of them share one holder.
type Registration struct {
	Names []string
	New   func() ViewController
	Lazy  bool
}

// Package is a bundle of controller registrations.
type Package interface {
	Controllers() []Registration
}

// Versioned is implemented by packages that declare the contract version
// they were written against.
type Versioned interface {
	APIVersion() string
}

// PackageFunc adapts a function to Package.
type PackageFunc func() []Registration

// Controllers implements Package.
func (f PackageFunc) Controllers() []Registration { return f() }

// CompatibleAPI reports whether a package version can be loaded.
func CompatibleAPI(version string) bool {
	if !semver.IsValid(version) {
		return false
	}
	return semver.Major(version) == semver.Major(APIVersion)
}

// AddControllers registers the controllers of every package. Invalid
// registrations and incompatible packages are reported and skipped. The
// custom-props controller, once registered, is installed in the update
// dispatcher.
func (m *Manager) AddControllers(packages ...Package) {
	for _, pkg := range packages {
		if pkg == nil {
			continue
		}
		if v, ok := pkg.(Versioned); ok && !CompatibleAPI(v.APIVersion()) {
			m.reportConfig("uimanager.AddControllers",
				fmt.Errorf("%w: package %T declares %q, want %s", ErrIncompatiblePackage, pkg, v.APIVersion(), semver.Major(APIVersion)))
			continue
		}
		for _, reg := range pkg.Controllers() {
			m.addRegistration(reg)
		}
	}
	if c, err := m.registry.ViewController(CustomPropsClassName); err == nil {
		m.updater.SetCustomPropsController(c)
	}
}

func (m *Manager) addRegistration(reg Registration) {
	if len(reg.Names) == 0 || reg.New == nil {
		m.reportConfig("uimanager.AddControllers",
			fmt.Errorf("%w: names=%v", ErrInvalidRegistration, reg.Names))
		return
	}
	ctrl := m.newController(reg)
	if ctrl == nil {
		m.reportConfig("uimanager.AddControllers",
			fmt.Errorf("%w: %q factory returned nil", ErrInvalidRegistration, reg.Names[0]))
		return
	}
	holder := &ControllerHolder{Controller: ctrl, Lazy: reg.Lazy}
	for _, name := range reg.Names {
		m.addControllerHolder(name, holder)
	}
}

func (m *Manager) newController(reg Registration) (ctrl ViewController) {
	defer errors.RecoverTo(m.handler, "uimanager.newController")
	return reg.New()
}

func (m *Manager) addControllerHolder(name string, holder *ControllerHolder) {
	replaced := m.registry.AddControllerHolder(name, holder)
	if replaced == nil || replaced == holder {
		return
	}
	m.logger.Warn("controller registration overridden",
		"class", name,
		"previous", fmt.Sprintf("%T", replaced.Controller),
		"current", fmt.Sprintf("%T", holder.Controller))
	if m.reportOverride {
		m.report(&errors.UIError{
			Op:       "uimanager.AddControllerHolder",
			Kind:     errors.KindConfig,
			NonFatal: true,
			Err:      fmt.Errorf("controller for %q replaced", name),
		})
	}
}

func (m *Manager) reportConfig(op string, err error) {
	m.report(&errors.UIError{
		Op:       op,
		Kind:     errors.KindConfig,
		NonFatal: true,
		Err:      err,
	})
}
