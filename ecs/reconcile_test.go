package ecs

import (
	"testing"

	"github.com/geomarker/spritelayer"
	"github.com/yohamta/donburi"
)

func spawn(world donburi.World, data SpriteComponentData) donburi.Entity {
	entity := world.Create(SpriteComponent)
	entry := world.Entry(entity)
	SpriteComponent.Set(entry, &data)
	return entity
}

func TestReconcilerSyncAddsNewEntities(t *testing.T) {
	world := donburi.NewWorld()
	spawn(world, SpriteComponentData{SpriteID: "unit-1", Location: spritelayer.Location{Lng: 1, Lat: 2}, Enabled: true})

	layer := spritelayer.NewLayer(spritelayer.LayerOptions{}, nil)
	recon := NewReconciler(world)

	added, modified, removed := recon.Sync(layer)
	if added != 1 || modified != 0 || removed != 0 {
		t.Fatalf("got added=%d modified=%d removed=%d, want 1/0/0", added, modified, removed)
	}

	view, ok := layer.GetSpriteState("unit-1")
	if !ok {
		t.Fatal("expected sprite unit-1 to exist after sync")
	}
	if view.Location.Lng != 1 || view.Location.Lat != 2 {
		t.Errorf("unexpected location %+v", view.Location)
	}
}

func TestReconcilerSyncModifiesExistingEntities(t *testing.T) {
	world := donburi.NewWorld()
	entity := spawn(world, SpriteComponentData{SpriteID: "unit-1", Location: spritelayer.Location{Lng: 1, Lat: 2}, Enabled: true})

	layer := spritelayer.NewLayer(spritelayer.LayerOptions{}, nil)
	recon := NewReconciler(world)
	recon.Sync(layer)

	entry := world.Entry(entity)
	SpriteComponent.Set(entry, &SpriteComponentData{SpriteID: "unit-1", Location: spritelayer.Location{Lng: 5, Lat: 6}, Enabled: true})

	added, modified, removed := recon.Sync(layer)
	if added != 0 || modified != 1 || removed != 0 {
		t.Fatalf("got added=%d modified=%d removed=%d, want 0/1/0", added, modified, removed)
	}

	view, _ := layer.GetSpriteState("unit-1")
	if view.Location.Lng != 5 || view.Location.Lat != 6 {
		t.Errorf("modify did not update location: %+v", view.Location)
	}
}

func TestReconcilerSyncRemovesVanishedEntities(t *testing.T) {
	world := donburi.NewWorld()
	entity := spawn(world, SpriteComponentData{SpriteID: "unit-1", Enabled: true})

	layer := spritelayer.NewLayer(spritelayer.LayerOptions{}, nil)
	recon := NewReconciler(world)
	recon.Sync(layer)

	world.Remove(entity)

	added, modified, removed := recon.Sync(layer)
	if removed != 1 || added != 0 || modified != 0 {
		t.Fatalf("got added=%d modified=%d removed=%d, want 0/0/1", added, modified, removed)
	}
	if _, ok := layer.GetSpriteState("unit-1"); ok {
		t.Error("expected sprite unit-1 to be removed")
	}
}

func TestNewDonburiEventStorePublishesEvents(t *testing.T) {
	world := donburi.NewWorld()
	listener := NewDonburiEventStore(world)

	var received []spritelayer.Event
	InteractionEventType.Subscribe(world, func(w donburi.World, e spritelayer.Event) {
		received = append(received, e)
	})

	listener(spritelayer.Event{Type: spritelayer.EventSpriteClick, SpriteID: "unit-1"})
	InteractionEventType.ProcessEvents(world)

	if len(received) != 1 || received[0].SpriteID != "unit-1" {
		t.Fatalf("unexpected received events: %+v", received)
	}
}
