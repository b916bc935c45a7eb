package indexer

import (
	"github.com/eventfoto/face-indexer/internal/normalize"
	"github.com/eventfoto/face-indexer/internal/photostore"
)

// Item is one enumerated photo together with its canonical id.
type Item struct {
	Desc         photostore.PhotoDescriptor
	NormalizedID string
}

// Plan partitions the enumerated photos against the local records and the
// remote collection. The remote collection is authoritative: a photo the
// remote already holds is never resubmitted, and a local record without a
// remote face does not count as indexed.
type Plan struct {
	// Consistent photos are present locally and remotely; nothing to do.
	Consistent []Item
	// NeedsIndex photos are absent from the remote collection and go
	// through the full pipeline, whatever the local record says.
	NeedsIndex []Item
	// Repair photos exist remotely but have no local record; only the
	// record is written, no resubmission.
	Repair []Item
	// Duplicates are photos whose normalized id collides with an earlier
	// photo in the same run. They are recorded as permanent errors.
	Duplicates []Item
}

// BuildPlan performs the three-way reconciliation for one event.
func BuildPlan(photos []photostore.PhotoDescriptor, localIDs, remoteIDs []string) *Plan {
	local := make(map[string]bool, len(localIDs))
	for _, id := range localIDs {
		local[id] = true
	}
	remote := make(map[string]bool, len(remoteIDs))
	for _, id := range remoteIDs {
		remote[id] = true
	}

	plan := &Plan{}
	claimed := make(map[string]bool, len(photos))

	for _, photo := range photos {
		id := normalize.ExternalImageID(photo.Name)
		item := Item{Desc: photo, NormalizedID: id}

		if id == "" || claimed[id] {
			plan.Duplicates = append(plan.Duplicates, item)
			continue
		}
		claimed[id] = true

		switch {
		case remote[id] && local[id]:
			plan.Consistent = append(plan.Consistent, item)
		case remote[id]:
			plan.Repair = append(plan.Repair, item)
		default:
			plan.NeedsIndex = append(plan.NeedsIndex, item)
		}
	}
	return plan
}
