// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/orchdash/orchdash/lib/config"
	"github.com/orchdash/orchdash/lib/simulate"
)

// demoComponents is used when the config lists none.
var demoComponents = []simulate.Spec{
	{Name: "event", AutoStart: true, Revive: true},
	{Name: "gateway", Delay: 2, AutoStart: true},
	{Name: "monitor", AutoStart: true, Revive: true},
	{Name: "gui", Delay: 5, AutoStart: true},
	{Name: "translator"},
}

// specsFromConfig converts configured components to simulation specs.
// An explicit start_delay of zero means an immediate start.
func specsFromConfig(components []config.ComponentConfig) []simulate.Spec {
	if len(components) == 0 {
		return demoComponents
	}
	specs := make([]simulate.Spec, len(components))
	for index, component := range components {
		spec := simulate.Spec{
			Name:      component.Name,
			Delay:     component.Delay,
			Revive:    component.Revive,
			AutoStart: component.StartsAutomatically(),
		}
		if component.StartDelay != "" {
			spec.StartDelay = config.Duration(component.StartDelay, simulate.DefaultStartDelay)
			if spec.StartDelay == 0 {
				spec.StartDelay = -1
			}
		}
		specs[index] = spec
	}
	return specs
}
