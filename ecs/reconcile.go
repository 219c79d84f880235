package ecs

import (
	"github.com/geomarker/spritelayer"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// InteractionEventType is the donburi event type carrying republished Layer
// pointer events. Subscribe to it in an ECS system to receive
// spriteclick/spritehover/spritemove/spriteleave events without registering
// a Layer listener directly.
var InteractionEventType = events.NewEventType[spritelayer.Event]()

// donburiEventStore republishes Layer events into a donburi world.
type donburiEventStore struct {
	world donburi.World
}

// NewDonburiEventStore returns a spritelayer.EventListener suitable for
// spritelayer.Layer.On that republishes every event onto world as
// InteractionEventType.
func NewDonburiEventStore(world donburi.World) spritelayer.EventListener {
	s := &donburiEventStore{world: world}
	return s.emit
}

func (s *donburiEventStore) emit(e spritelayer.Event) {
	InteractionEventType.Publish(s.world, e)
}

// SpriteComponentData is the per-entity state an ECS world maintains for
// anything it wants mirrored as a layer sprite. Reconciler reads it;
// nothing in this package writes it back.
type SpriteComponentData struct {
	SpriteID          string
	Location          spritelayer.Location
	Tag               string
	Enabled           bool
	OpacityMultiplier float64
}

// SpriteComponent tags an entity as sprite-backed. An entity without it is
// invisible to Reconciler.
var SpriteComponent = donburi.NewComponentType[SpriteComponentData]()

// Reconciler binds a donburi.World's SpriteComponent-tagged entities to a
// spritelayer.Layer: entities with no matching sprite are added, existing
// ones are patched, and sprites whose entity no longer matches the query are
// removed. This is exactly the external-authoritative-collection
// reconciliation spritelayer.MutateSprites was built for.
type Reconciler struct {
	world donburi.World
	query *donburi.Query
}

// NewReconciler builds a Reconciler over every SpriteComponent-tagged entity
// in world.
func NewReconciler(world donburi.World) *Reconciler {
	return &Reconciler{
		world: world,
		query: donburi.NewQuery(filter.Contains(SpriteComponent)),
	}
}

func (r *Reconciler) entries() []*donburi.Entry {
	var out []*donburi.Entry
	r.query.Each(r.world, func(entry *donburi.Entry) {
		out = append(out, entry)
	})
	return out
}

// Sync reconciles layer against the world's current SpriteComponent-tagged
// entities. added and modified are the counts spritelayer.MutateSprites
// reports; removed counts the layer sprites with no matching entity, which
// Sync removes afterwards.
func (r *Reconciler) Sync(layer *spritelayer.Layer) (added, modified, removed int) {
	entries := r.entries()
	added, modified, removed = spritelayer.MutateSprites(layer, entries, spritelayer.MutateCallbacks[*donburi.Entry]{
		SpriteID: func(entry *donburi.Entry) string {
			return SpriteComponent.Get(entry).SpriteID
		},
		Add: func(entry *donburi.Entry) (spritelayer.SpriteInit, bool) {
			data := SpriteComponent.Get(entry)
			return spritelayer.SpriteInit{
				Enabled:           data.Enabled,
				Tag:               data.Tag,
				OpacityMultiplier: data.OpacityMultiplier,
				Location:          data.Location,
			}, true
		},
		Modify: func(entry *donburi.Entry, existing spritelayer.SpriteView, updater *spritelayer.SpriteUpdaterEntry) {
			data := SpriteComponent.Get(entry)
			enabled := data.Enabled
			tag := data.Tag
			multiplier := data.OpacityMultiplier
			loc := data.Location
			updater.Enabled = &enabled
			updater.Tag = &tag
			updater.OpacityMultiplier = &multiplier
			updater.Location = &loc
		},
	})

	live := make(map[string]bool, len(entries))
	for _, entry := range entries {
		live[SpriteComponent.Get(entry).SpriteID] = true
	}
	var stale []string
	for _, id := range layer.GetAllSpriteIds() {
		if !live[id] {
			stale = append(stale, id)
		}
	}
	removed += layer.RemoveSprites(stale)
	return added, modified, removed
}
