// Package topology links fog devices into a rooted tree annotated with
// link latencies.
package topology

import (
	"github.com/sirupsen/logrus"

	"github.com/tzaika/iFogSim/sim/entity"
)

// Link is a resolved parent→child connection.
type Link struct {
	ParentID int
	ChildID  int
	Latency  float64
}

// Unresolved is a device whose declared parent id matches no known device.
// Such a device is left unconnected and acts as an additional root.
type Unresolved struct {
	DeviceID int
	ParentID int
}

// Result reports what Connect did.
type Result struct {
	Links      []Link
	Unresolved []Unresolved
	Roots      []int
	Tree       *Tree
}

// Connect links every device to its declared parent: the parent records the
// child id and child→uplink-latency. A root (entity.NoParent) is skipped
// silently; an unknown parent id is tolerated and reported in
// Result.Unresolved. Connect must run once, before the simulation starts.
//
// Lookup is a linear scan per device, O(D²), which is fine at fog scale.
func Connect(devices []*entity.FogDevice) Result {
	var res Result
	for _, d := range devices {
		pid := d.ParentID()
		if pid == entity.NoParent {
			res.Roots = append(res.Roots, d.ID())
			continue
		}
		parent := deviceByID(devices, pid)
		if parent == nil {
			logrus.Debugf("topology: parent %d of %s not found, treating it as a root", pid, d.Name())
			res.Unresolved = append(res.Unresolved, Unresolved{DeviceID: d.ID(), ParentID: pid})
			res.Roots = append(res.Roots, d.ID())
			continue
		}
		latency := d.UplinkLatency()
		parent.AddChild(d.ID(), latency)
		res.Links = append(res.Links, Link{ParentID: parent.ID(), ChildID: d.ID(), Latency: latency})
	}
	res.Tree = newTree(devices, res.Links)
	return res
}

func deviceByID(devices []*entity.FogDevice, id int) *entity.FogDevice {
	for _, d := range devices {
		if d.ID() == id {
			return d
		}
	}
	return nil
}

// Tree answers path latency between devices over resolved links only.
type Tree struct {
	parent map[int]int
	uplink map[int]float64
	known  map[int]bool
}

func newTree(devices []*entity.FogDevice, links []Link) *Tree {
	t := &Tree{
		parent: make(map[int]int, len(links)),
		uplink: make(map[int]float64, len(links)),
		known:  make(map[int]bool, len(devices)),
	}
	for _, d := range devices {
		t.known[d.ID()] = true
	}
	for _, l := range links {
		t.parent[l.ChildID] = l.ParentID
		t.uplink[l.ChildID] = l.Latency
	}
	return t
}

// ancestors returns id followed by its ancestors up to its root, with the
// cumulative latency from id to each. A parent cycle ends the walk at the
// first repeated device.
func (t *Tree) ancestors(id int) ([]int, map[int]float64) {
	path := []int{id}
	dist := map[int]float64{id: 0}
	cur, acc := id, 0.0
	for {
		p, ok := t.parent[cur]
		if !ok {
			break
		}
		if _, seen := dist[p]; seen {
			break
		}
		acc += t.uplink[cur]
		path = append(path, p)
		dist[p] = acc
		cur = p
	}
	return path, dist
}

// PathLatency is the summed link latency of the tree path between two
// devices. ok is false when they sit in different trees or are unknown.
func (t *Tree) PathLatency(from, to int) (float64, bool) {
	if !t.known[from] || !t.known[to] {
		return 0, false
	}
	if from == to {
		return 0, true
	}
	_, fromDist := t.ancestors(from)
	toPath, toDist := t.ancestors(to)
	for _, a := range toPath {
		if d, ok := fromDist[a]; ok {
			return d + toDist[a], true
		}
	}
	return 0, false
}

// Parent returns the resolved parent of id.
func (t *Tree) Parent(id int) (int, bool) {
	p, ok := t.parent[id]
	return p, ok
}
