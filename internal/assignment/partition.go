package assignment

import "github.com/LeonardoBeccarini/lumicert/internal/model/entities"

// Partition splits the fleet relative to one sector. Luminarias bound to another
// sector are in neither list.
type Partition struct {
	Assigned   []entities.Luminaria `json:"asignadas"`
	Unassigned []entities.Luminaria `json:"disponibles"`
}

func PartitionFor(all []entities.Luminaria, sectorKey string) Partition {
	p := Partition{Assigned: []entities.Luminaria{}, Unassigned: []entities.Luminaria{}}
	for _, l := range all {
		switch {
		case l.BoundTo(sectorKey):
			p.Assigned = append(p.Assigned, l)
		case !l.Assigned():
			p.Unassigned = append(p.Unassigned, l)
		}
	}
	return p
}

// Available returns the luminarias that may be selected for the sector, in input order.
func Available(all []entities.Luminaria, sectorKey string) []entities.Luminaria {
	out := make([]entities.Luminaria, 0, len(all))
	for _, l := range all {
		if !l.Assigned() || l.BoundTo(sectorKey) {
			out = append(out, l)
		}
	}
	return out
}

// Columns splits the available luminarias by the current selection: the selected ones
// and the ones still free to add.
func Columns(all []entities.Luminaria, sectorKey string, sel Selection) Partition {
	p := Partition{Assigned: []entities.Luminaria{}, Unassigned: []entities.Luminaria{}}
	for _, l := range Available(all, sectorKey) {
		if sel.Has(l.IDLum) {
			p.Assigned = append(p.Assigned, l)
		} else {
			p.Unassigned = append(p.Unassigned, l)
		}
	}
	return p
}

// CurrentSelection is the selection an editor starts from.
func CurrentSelection(all []entities.Luminaria, sectorKey string) Selection {
	assigned := PartitionFor(all, sectorKey).Assigned
	ids := make([]string, 0, len(assigned))
	for _, l := range assigned {
		ids = append(ids, l.IDLum)
	}
	return NewSelection(ids...)
}
