// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/danielhkuo/farmdesk/models"
)

// ShapeID identifies a shape on the drawing surface
type ShapeID string

// Surface is the drawing surface the controller keeps in sync with the draft
type Surface interface {
	Remove(id ShapeID)
	Clear()
	AddPoint(pt orb.Point) ShapeID
	SetView(pt orb.Point, zoom int)
}

// CommandBuffer is a Surface that records commands for the browser map to
// replay. Drain hands them over and empties the buffer
type CommandBuffer struct {
	mu   sync.Mutex
	cmds []models.SurfaceCommand
}

func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

func (b *CommandBuffer) push(cmd models.SurfaceCommand) {
	b.mu.Lock()
	b.cmds = append(b.cmds, cmd)
	b.mu.Unlock()
}

func (b *CommandBuffer) Remove(id ShapeID) {
	b.push(models.SurfaceCommand{Op: models.CommandRemove, ID: string(id)})
}

func (b *CommandBuffer) Clear() {
	b.push(models.SurfaceCommand{Op: models.CommandClear})
}

// AddPoint assigns the new marker a server-side ID the browser tags its layer with
func (b *CommandBuffer) AddPoint(pt orb.Point) ShapeID {
	id := ShapeID("srv-" + uuid.NewString())
	lat, lng := pt.Lat(), pt.Lon()
	b.push(models.SurfaceCommand{Op: models.CommandAddPoint, ID: string(id), Lat: &lat, Lng: &lng})
	return id
}

func (b *CommandBuffer) SetView(pt orb.Point, zoom int) {
	lat, lng := pt.Lat(), pt.Lon()
	b.push(models.SurfaceCommand{Op: models.CommandSetView, Lat: &lat, Lng: &lng, Zoom: zoom})
}

// Drain returns the pending commands, never nil
func (b *CommandBuffer) Drain() []models.SurfaceCommand {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.cmds
	b.cmds = nil
	if out == nil {
		out = []models.SurfaceCommand{}
	}
	return out
}
