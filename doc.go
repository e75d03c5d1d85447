// Package settings provides a typed, persisted registry of application settings.
//
// It supports:
//  1. Declaring settings with a default value, optional grouping (parent),
//     a hidden flag and a description.
//  2. Three variants: plain settings, range settings whose numeric value is
//     clamped into [min, max], and option settings restricted to a fixed list.
//  3. Coercing every write to the setting's Kind (int, float, bool or string)
//     and rejecting values that cannot be converted.
//  4. Persisting the whole registry through a Store (see package storage)
//     after every mutation, and restoring it on startup.
//  5. Change observers per setting and registry-wide.
//
// Typical usage:
//
//	st, err := storage.Open(storage.WithPersistence("myapp"), storage.WithEnvPrefix("MYAPP"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := settings.New(st)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	alpha, _ := m.CreateRange("transparency", 95, 50, 100, settings.WithParent("window"))
//	_ = alpha.Set(150) // stored as 100
//
// Unknown names passed to Get or SetValue are created on the fly unless the
// Manager was built WithStrict.
package settings
