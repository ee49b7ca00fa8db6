// Package spatialgraph implements the spatial bookkeeping side of the mapping
// pipeline: a directed multigraph whose nodes are frames identified by factor
// graph symbols, each carrying typed item tables for pose estimates, point
// clouds, keypoints, descriptors and a bounding box slot, and whose edges are
// timestamped relative transforms.
package spatialgraph

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/google/uuid"

	"go.viam.com/sam/features"
	"go.viam.com/sam/pointcloud"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

type node struct {
	poses       []PoseItem
	clouds      []CloudItem
	keypoints   []KeypointItem
	descriptors []DescriptorItem
	box         *spatialmath.AxisAlignedBox
	out         map[symbol.Symbol][]Transform
}

// Graph is the spatial store. It is not safe for concurrent use; the pipeline
// serializes access.
type Graph struct {
	nodes     map[symbol.Symbol]*node
	edgeCount int
	logger    golog.Logger
}

// NewGraph returns an empty spatial graph.
func NewGraph(logger golog.Logger) *Graph {
	return &Graph{
		nodes:  map[symbol.Symbol]*node{},
		logger: logger,
	}
}

// AddFrame creates an empty frame for the given symbol.
func (g *Graph) AddFrame(id symbol.Symbol) error {
	if _, ok := g.nodes[id]; ok {
		return NewFrameExistsError(id)
	}
	g.nodes[id] = &node{out: map[symbol.Symbol][]Transform{}}
	return nil
}

// HasFrame reports whether the frame exists.
func (g *Graph) HasFrame(id symbol.Symbol) bool {
	_, ok := g.nodes[id]
	return ok
}

// FrameCount returns the number of frames.
func (g *Graph) FrameCount() int {
	return len(g.nodes)
}

// Frames returns all frame symbols in symbol order.
func (g *Graph) Frames() []symbol.Symbol {
	frames := make([]symbol.Symbol, 0, len(g.nodes))
	for id := range g.nodes {
		frames = append(frames, id)
	}
	symbol.Sort(frames)
	return frames
}

// FramesOfKind returns the frame symbols of one kind in symbol order.
func (g *Graph) FramesOfKind(kind byte) []symbol.Symbol {
	frames := []symbol.Symbol{}
	for id := range g.nodes {
		if id.Kind() == kind {
			frames = append(frames, id)
		}
	}
	symbol.Sort(frames)
	return frames
}

// AddPose appends a pose estimate item to the frame.
func (g *Graph) AddPose(id symbol.Symbol, at time.Time, est spatialmath.PoseWithCovariance) error {
	n, ok := g.nodes[id]
	if !ok {
		return NewUnknownFrameError(id)
	}
	n.poses = append(n.poses, PoseItem{ID: uuid.New(), At: at, Estimate: est})
	return nil
}

// AddPointCloud appends a point cloud item to the frame.
func (g *Graph) AddPointCloud(id symbol.Symbol, at time.Time, cloud pointcloud.PointCloud) error {
	n, ok := g.nodes[id]
	if !ok {
		return NewUnknownFrameError(id)
	}
	n.clouds = append(n.clouds, CloudItem{ID: uuid.New(), At: at, Cloud: cloud})
	return nil
}

// AddKeypoints appends a keypoint item to the frame.
func (g *Graph) AddKeypoints(id symbol.Symbol, at time.Time, kps features.Keypoints) error {
	n, ok := g.nodes[id]
	if !ok {
		return NewUnknownFrameError(id)
	}
	n.keypoints = append(n.keypoints, KeypointItem{ID: uuid.New(), At: at, Keypoints: kps})
	return nil
}

// AddDescriptors appends a descriptor item to the frame.
func (g *Graph) AddDescriptors(id symbol.Symbol, at time.Time, descs features.Descriptors) error {
	n, ok := g.nodes[id]
	if !ok {
		return NewUnknownFrameError(id)
	}
	n.descriptors = append(n.descriptors, DescriptorItem{ID: uuid.New(), At: at, Descriptors: descs})
	return nil
}

// Pose returns the frame's first pose item.
func (g *Graph) Pose(id symbol.Symbol) (PoseItem, error) {
	n, ok := g.nodes[id]
	if !ok {
		return PoseItem{}, NewUnknownFrameError(id)
	}
	if len(n.poses) == 0 {
		return PoseItem{}, NewItemNotFoundError(id, "pose")
	}
	return n.poses[0], nil
}

// PointCloud returns the frame's first cloud item.
func (g *Graph) PointCloud(id symbol.Symbol) (CloudItem, error) {
	n, ok := g.nodes[id]
	if !ok {
		return CloudItem{}, NewUnknownFrameError(id)
	}
	if len(n.clouds) == 0 {
		return CloudItem{}, NewItemNotFoundError(id, "point cloud")
	}
	return n.clouds[0], nil
}

// Keypoints returns the frame's first keypoint item.
func (g *Graph) Keypoints(id symbol.Symbol) (KeypointItem, error) {
	n, ok := g.nodes[id]
	if !ok {
		return KeypointItem{}, NewUnknownFrameError(id)
	}
	if len(n.keypoints) == 0 {
		return KeypointItem{}, NewItemNotFoundError(id, "keypoints")
	}
	return n.keypoints[0], nil
}

// Descriptors returns the frame's first descriptor item.
func (g *Graph) Descriptors(id symbol.Symbol) (DescriptorItem, error) {
	n, ok := g.nodes[id]
	if !ok {
		return DescriptorItem{}, NewUnknownFrameError(id)
	}
	if len(n.descriptors) == 0 {
		return DescriptorItem{}, NewItemNotFoundError(id, "descriptors")
	}
	return n.descriptors[0], nil
}

// SetPose replaces the payload of the frame's first pose item, keeping the
// item's identity and refreshing its stamp.
func (g *Graph) SetPose(id symbol.Symbol, at time.Time, est spatialmath.PoseWithCovariance) error {
	n, ok := g.nodes[id]
	if !ok {
		return NewUnknownFrameError(id)
	}
	if len(n.poses) == 0 {
		return NewItemNotFoundError(id, "pose")
	}
	n.poses[0].At = at
	n.poses[0].Estimate = est
	return nil
}

// SetPointCloud replaces the payload of the frame's first cloud item, keeping
// the item's identity and refreshing its stamp.
func (g *Graph) SetPointCloud(id symbol.Symbol, at time.Time, cloud pointcloud.PointCloud) error {
	n, ok := g.nodes[id]
	if !ok {
		return NewUnknownFrameError(id)
	}
	if len(n.clouds) == 0 {
		return NewItemNotFoundError(id, "point cloud")
	}
	n.clouds[0].At = at
	n.clouds[0].Cloud = cloud
	return nil
}

// HasPose reports whether the frame exists and has a pose item.
func (g *Graph) HasPose(id symbol.Symbol) bool {
	n, ok := g.nodes[id]
	return ok && len(n.poses) > 0
}

// HasPointCloud reports whether the frame exists and has a cloud item.
func (g *Graph) HasPointCloud(id symbol.Symbol) bool {
	n, ok := g.nodes[id]
	return ok && len(n.clouds) > 0
}

// HasKeypoints reports whether the frame exists and has a keypoint item.
func (g *Graph) HasKeypoints(id symbol.Symbol) bool {
	n, ok := g.nodes[id]
	return ok && len(n.keypoints) > 0
}

// HasDescriptors reports whether the frame exists and has a descriptor item.
func (g *Graph) HasDescriptors(id symbol.Symbol) bool {
	n, ok := g.nodes[id]
	return ok && len(n.descriptors) > 0
}

// HasBoundingBox reports whether the frame exists and has a bounding box.
func (g *Graph) HasBoundingBox(id symbol.Symbol) bool {
	n, ok := g.nodes[id]
	return ok && n.box != nil
}

// PoseItemCount returns the number of pose items on the frame, zero when the
// frame is missing.
func (g *Graph) PoseItemCount(id symbol.Symbol) int {
	n, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(n.poses)
}

// PointCloudCount returns the number of cloud items on the frame.
func (g *Graph) PointCloudCount(id symbol.Symbol) int {
	n, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(n.clouds)
}

// KeypointsCount returns the number of keypoint items on the frame.
func (g *Graph) KeypointsCount(id symbol.Symbol) int {
	n, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(n.keypoints)
}

// DescriptorsCount returns the number of descriptor items on the frame.
func (g *Graph) DescriptorsCount(id symbol.Symbol) int {
	n, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(n.descriptors)
}

// SetBoundingBox stores the frame's bounding box, replacing any previous one.
// A frame has at most one box.
func (g *Graph) SetBoundingBox(id symbol.Symbol, box spatialmath.AxisAlignedBox) error {
	n, ok := g.nodes[id]
	if !ok {
		return NewUnknownFrameError(id)
	}
	n.box = &box
	return nil
}

// BoundingBox returns the frame's bounding box.
func (g *Graph) BoundingBox(id symbol.Symbol) (spatialmath.AxisAlignedBox, error) {
	n, ok := g.nodes[id]
	if !ok {
		return spatialmath.AxisAlignedBox{}, NewUnknownFrameError(id)
	}
	if n.box == nil {
		return spatialmath.AxisAlignedBox{}, NewItemNotFoundError(id, "bounding box")
	}
	return *n.box, nil
}

// AddTransform appends a directed transform edge between the two frames,
// creating either frame if it does not exist yet. Edges between a pair are
// never deduplicated.
func (g *Graph) AddTransform(from, to symbol.Symbol, tr Transform) {
	g.ensureFrame(from)
	g.ensureFrame(to)
	n := g.nodes[from]
	n.out[to] = append(n.out[to], tr)
	g.edgeCount++
}

// Transforms returns a copy of the transforms on the directed edge from one
// frame to another, in insertion order.
func (g *Graph) Transforms(from, to symbol.Symbol) []Transform {
	n, ok := g.nodes[from]
	if !ok {
		return nil
	}
	trs := n.out[to]
	if len(trs) == 0 {
		return nil
	}
	out := make([]Transform, len(trs))
	copy(out, trs)
	return out
}

// EdgeCount returns the total number of transform edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

func (g *Graph) ensureFrame(id symbol.Symbol) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{out: map[symbol.Symbol][]Transform{}}
	g.logger.Debugf("auto-created frame %s", id)
}
