// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

import (
	"fmt"
	"sort"
)

// derivation is a mechanism defined in terms of a parent mechanism
type derivation struct {
	parent    string
	globals   map[string]float64
	ionRebind map[string]string // parent ion name -> new name
}

// Catalogue maps mechanism names to kernels and derived mechanisms
type Catalogue struct {
	kernels map[string]Kernel
	derived map[string]*derivation
}

// NewCatalogue returns an empty catalogue
func NewCatalogue() *Catalogue {
	return &Catalogue{kernels: map[string]Kernel{}, derived: map[string]*derivation{}}
}

// Has reports whether name is defined
func (ct *Catalogue) Has(name string) bool {
	_, k := ct.kernels[name]
	_, d := ct.derived[name]
	return k || d
}

// IsDerived reports whether name is a derived mechanism
func (ct *Catalogue) IsDerived(name string) bool {
	_, d := ct.derived[name]
	return d
}

// Names returns all mechanism names, sorted
func (ct *Catalogue) Names() []string {
	nms := make([]string, 0, len(ct.kernels)+len(ct.derived))
	for nm := range ct.kernels {
		nms = append(nms, nm)
	}
	for nm := range ct.derived {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// Add registers kernel k under name
func (ct *Catalogue) Add(name string, k Kernel) error {
	if ct.Has(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateMechanism, name)
	}
	ct.kernels[name] = k
	return nil
}

// MustAdd is Add that panics on error, for building fixed catalogues
func (ct *Catalogue) MustAdd(name string, k Kernel) {
	if err := ct.Add(name, k); err != nil {
		panic(err)
	}
}

// Derive defines name as parent with some globals overridden and/or ions
// renamed.  Global names and ion names refer to the parent as seen from
// the catalogue, i.e., after the parent's own renaming.
func (ct *Catalogue) Derive(name, parent string, globals map[string]float64, ionRebind map[string]string) error {
	if ct.Has(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateMechanism, name)
	}
	pinf, err := ct.Info(parent)
	if err != nil {
		return fmt.Errorf("%w: %q from %q: %v", ErrBadDerivation, name, parent, err)
	}
	for g := range globals {
		if pinf.GlobalIndex(g) < 0 {
			return fmt.Errorf("%w: %q: %w %q in %q", ErrBadDerivation, name, ErrNoSuchGlobal, g, parent)
		}
	}
	renamed := map[string]bool{}
	for _, id := range pinf.Ions {
		nm := id.Name
		if to, ok := ionRebind[id.Name]; ok {
			nm = to
		}
		if renamed[nm] {
			return fmt.Errorf("%w: %q: two ions of %q bound to %q", ErrBadDerivation, name, parent, nm)
		}
		renamed[nm] = true
	}
	for from := range ionRebind {
		if pinf.IonIndex(from) < 0 {
			return fmt.Errorf("%w: %q: %q has no ion %q", ErrBadDerivation, name, parent, from)
		}
	}
	d := &derivation{parent: parent, globals: map[string]float64{}, ionRebind: map[string]string{}}
	for k, v := range globals {
		d.globals[k] = v
	}
	for k, v := range ionRebind {
		d.ionRebind[k] = v
	}
	ct.derived[name] = d
	return nil
}

// resolve returns the kernel of name and the composed overrides of its
// derivation chain
func (ct *Catalogue) resolve(name string) (Kernel, *Overrides, error) {
	var chain []*derivation
	cur := name
	for {
		if k, ok := ct.kernels[cur]; ok {
			ov := &Overrides{Globals: map[string]float64{}, IonRebind: map[string]string{}}
			for _, id := range k.Info().Ions {
				ov.IonRebind[id.Name] = id.Name
			}
			for i := len(chain) - 1; i >= 0; i-- {
				d := chain[i]
				for g, v := range d.globals {
					ov.Globals[g] = v
				}
				for kn, bound := range ov.IonRebind {
					if to, ok := d.ionRebind[bound]; ok {
						ov.IonRebind[kn] = to
					}
				}
			}
			return k, ov, nil
		}
		d, ok := ct.derived[cur]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrNoSuchMechanism, cur)
		}
		chain = append(chain, d)
		cur = d.parent
	}
}

// Info returns the description of name as seen through its derivations:
// ion names are the bound species and global defaults the overridden values.
func (ct *Catalogue) Info(name string) (*Info, error) {
	k, ov, err := ct.resolve(name)
	if err != nil {
		return nil, err
	}
	inf := k.Info().Clone()
	for i := range inf.Globals {
		if v, ok := ov.Globals[inf.Globals[i].Name]; ok {
			inf.Globals[i].Default = v
		}
	}
	for i := range inf.Ions {
		inf.Ions[i].Name = ov.Ion(inf.Ions[i].Name)
	}
	return inf, nil
}

// Instance returns an uninstantiated mechanism for name using backend be,
// and the overrides to pass to its Instantiate.
func (ct *Catalogue) Instance(name string, be Backend) (Mechanism, *Overrides, error) {
	k, ov, err := ct.resolve(name)
	if err != nil {
		return nil, nil, err
	}
	return NewInstance(k, be), ov, nil
}

// Import adds all mechanisms of other with names prefixed by prefix
func (ct *Catalogue) Import(other *Catalogue, prefix string) error {
	for nm := range other.kernels {
		if ct.Has(prefix + nm) {
			return fmt.Errorf("%w: %q", ErrDuplicateMechanism, prefix+nm)
		}
	}
	for nm := range other.derived {
		if ct.Has(prefix + nm) {
			return fmt.Errorf("%w: %q", ErrDuplicateMechanism, prefix+nm)
		}
	}
	for nm, k := range other.kernels {
		ct.kernels[prefix+nm] = k
	}
	for nm, d := range other.derived {
		cd := *d
		cd.parent = prefix + d.parent
		ct.derived[prefix+nm] = &cd
	}
	return nil
}
