//go:build windows

package locations

import (
	"golang.org/x/sys/windows/registry"

	"github.com/blackwell-systems/startupmgr/internal/startup"
)

type systemOpener struct {
	root registry.Key
	path string
}

// SystemRunKey returns the opener for the live run-key of a registry location.
func SystemRunKey(kind startup.LocationKind) KeyOpener {
	root := registry.CURRENT_USER
	if kind == startup.MachineRegistry {
		root = registry.LOCAL_MACHINE
	}
	return systemOpener{root: root, path: RunKeyPath}
}

func (o systemOpener) OpenRunKey(access Access) (RunKey, error) {
	var (
		k   registry.Key
		err error
	)
	switch access {
	case CreateAccess:
		k, _, err = registry.CreateKey(o.root, o.path, registry.QUERY_VALUE|registry.SET_VALUE)
	case WriteAccess:
		k, err = registry.OpenKey(o.root, o.path, registry.QUERY_VALUE|registry.SET_VALUE)
	default:
		k, err = registry.OpenKey(o.root, o.path, registry.QUERY_VALUE)
	}
	if err != nil {
		return nil, err
	}
	return systemKey{k: k}, nil
}

type systemKey struct {
	k registry.Key
}

func (s systemKey) ValueNames() ([]string, error) {
	return s.k.ReadValueNames(0)
}

func (s systemKey) StringValue(name string) (string, error) {
	v, valtype, err := s.k.GetStringValue(name)
	if err != nil {
		return "", err
	}
	if valtype == registry.EXPAND_SZ {
		return registry.ExpandString(v)
	}
	return v, nil
}

func (s systemKey) SetStringValue(name, value string) error {
	return s.k.SetStringValue(name, value)
}

func (s systemKey) DeleteValue(name string) error {
	return s.k.DeleteValue(name)
}

func (s systemKey) Close() error {
	return s.k.Close()
}
