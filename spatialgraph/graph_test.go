package spatialgraph

import (
	"testing"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/sam/features"
	"go.viam.com/sam/pointcloud"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

func testPoseEstimate(t *testing.T, pt r3.Vector) spatialmath.PoseWithCovariance {
	t.Helper()
	est, err := spatialmath.NewPoseWithCovariance(spatialmath.NewPoseFromPoint(pt), nil)
	test.That(t, err, test.ShouldBeNil)
	return est
}

func TestFrameLifecycle(t *testing.T) {
	g := NewGraph(golog.NewTestLogger(t))
	x0 := symbol.New('x', 0)
	x1 := symbol.New('x', 1)
	l0 := symbol.New('l', 0)

	test.That(t, g.FrameCount(), test.ShouldEqual, 0)
	test.That(t, g.HasFrame(x0), test.ShouldBeFalse)

	test.That(t, g.AddFrame(x0), test.ShouldBeNil)
	test.That(t, g.HasFrame(x0), test.ShouldBeTrue)
	err := g.AddFrame(x0)
	test.That(t, err, test.ShouldWrap, ErrFrameExists)

	test.That(t, g.AddFrame(x1), test.ShouldBeNil)
	test.That(t, g.AddFrame(l0), test.ShouldBeNil)
	test.That(t, g.FrameCount(), test.ShouldEqual, 3)
	test.That(t, g.Frames(), test.ShouldResemble, []symbol.Symbol{l0, x0, x1})
	test.That(t, g.FramesOfKind('x'), test.ShouldResemble, []symbol.Symbol{x0, x1})
	test.That(t, g.FramesOfKind('l'), test.ShouldResemble, []symbol.Symbol{l0})
	test.That(t, g.FramesOfKind('z'), test.ShouldBeEmpty)
}

func TestPoseItems(t *testing.T) {
	g := NewGraph(golog.NewTestLogger(t))
	x0 := symbol.New('x', 0)
	x1 := symbol.New('x', 1)

	err := g.AddPose(x0, time.Unix(1, 0), testPoseEstimate(t, r3.Vector{X: 1}))
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)
	_, err = g.Pose(x0)
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)

	test.That(t, g.AddFrame(x0), test.ShouldBeNil)
	_, err = g.Pose(x0)
	test.That(t, err, test.ShouldWrap, ErrItemNotFound)
	test.That(t, g.HasPose(x0), test.ShouldBeFalse)
	test.That(t, g.PoseItemCount(x0), test.ShouldEqual, 0)

	t0 := time.Unix(10, 0)
	test.That(t, g.AddPose(x0, t0, testPoseEstimate(t, r3.Vector{X: 1, Y: 2, Z: 3})), test.ShouldBeNil)
	item, err := g.Pose(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, item.At, test.ShouldEqual, t0)
	test.That(t, item.Estimate.Pose.Point(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, g.HasPose(x0), test.ShouldBeTrue)
	test.That(t, g.PoseItemCount(x0), test.ShouldEqual, 1)

	// appends accumulate, the getter keeps returning the first item
	test.That(t, g.AddPose(x0, time.Unix(11, 0), testPoseEstimate(t, r3.Vector{X: 4})), test.ShouldBeNil)
	test.That(t, g.PoseItemCount(x0), test.ShouldEqual, 2)
	again, err := g.Pose(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again.Estimate.Pose.Point(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	// replacement rewrites the first item in place, keeping its identity
	firstID := again.ID
	t2 := time.Unix(20, 0)
	test.That(t, g.SetPose(x0, t2, testPoseEstimate(t, r3.Vector{X: 7, Y: 8, Z: 9})), test.ShouldBeNil)
	replaced, err := g.Pose(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, replaced.ID, test.ShouldEqual, firstID)
	test.That(t, replaced.At, test.ShouldEqual, t2)
	test.That(t, replaced.Estimate.Pose.Point(), test.ShouldResemble, r3.Vector{X: 7, Y: 8, Z: 9})
	test.That(t, g.PoseItemCount(x0), test.ShouldEqual, 2)

	err = g.SetPose(x1, t2, testPoseEstimate(t, r3.Vector{}))
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)
	test.That(t, g.AddFrame(x1), test.ShouldBeNil)
	err = g.SetPose(x1, t2, testPoseEstimate(t, r3.Vector{}))
	test.That(t, err, test.ShouldWrap, ErrItemNotFound)
}

func TestCloudItems(t *testing.T) {
	g := NewGraph(golog.NewTestLogger(t))
	x0 := symbol.New('x', 0)

	cloud := pointcloud.NewBasicEmpty()
	test.That(t, cloud.Set(r3.Vector{X: 1}, nil), test.ShouldBeNil)

	err := g.AddPointCloud(x0, time.Unix(1, 0), cloud)
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)

	test.That(t, g.AddFrame(x0), test.ShouldBeNil)
	_, err = g.PointCloud(x0)
	test.That(t, err, test.ShouldWrap, ErrItemNotFound)
	test.That(t, g.HasPointCloud(x0), test.ShouldBeFalse)

	t0 := time.Unix(5, 0)
	test.That(t, g.AddPointCloud(x0, t0, cloud), test.ShouldBeNil)
	item, err := g.PointCloud(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, item.At, test.ShouldEqual, t0)
	test.That(t, item.Cloud.Size(), test.ShouldEqual, 1)
	test.That(t, g.HasPointCloud(x0), test.ShouldBeTrue)
	test.That(t, g.PointCloudCount(x0), test.ShouldEqual, 1)

	bigger := pointcloud.NewBasicEmpty()
	test.That(t, bigger.Set(r3.Vector{X: 1}, nil), test.ShouldBeNil)
	test.That(t, bigger.Set(r3.Vector{X: 2}, nil), test.ShouldBeNil)
	t1 := time.Unix(6, 0)
	test.That(t, g.SetPointCloud(x0, t1, bigger), test.ShouldBeNil)
	replaced, err := g.PointCloud(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, replaced.ID, test.ShouldEqual, item.ID)
	test.That(t, replaced.At, test.ShouldEqual, t1)
	test.That(t, replaced.Cloud.Size(), test.ShouldEqual, 2)

	err = g.SetPointCloud(symbol.New('x', 9), t1, bigger)
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)
}

func TestFeatureItems(t *testing.T) {
	g := NewGraph(golog.NewTestLogger(t))
	x0 := symbol.New('x', 0)

	kps := features.Keypoints{{Point: r3.Vector{X: 1, Y: 2, Z: 3}, Scale: 0.5}}
	descs := features.Descriptors{{0.1, 0.2, 0.3}}

	err := g.AddKeypoints(x0, time.Unix(1, 0), kps)
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)
	err = g.AddDescriptors(x0, time.Unix(1, 0), descs)
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)

	test.That(t, g.AddFrame(x0), test.ShouldBeNil)
	_, err = g.Keypoints(x0)
	test.That(t, err, test.ShouldWrap, ErrItemNotFound)
	_, err = g.Descriptors(x0)
	test.That(t, err, test.ShouldWrap, ErrItemNotFound)

	t0 := time.Unix(2, 0)
	test.That(t, g.AddKeypoints(x0, t0, kps), test.ShouldBeNil)
	test.That(t, g.AddDescriptors(x0, t0, descs), test.ShouldBeNil)

	kpItem, err := g.Keypoints(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, kpItem.Keypoints, test.ShouldResemble, kps)
	descItem, err := g.Descriptors(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, descItem.Descriptors, test.ShouldResemble, descs)

	test.That(t, g.HasKeypoints(x0), test.ShouldBeTrue)
	test.That(t, g.HasDescriptors(x0), test.ShouldBeTrue)
	test.That(t, g.KeypointsCount(x0), test.ShouldEqual, 1)
	test.That(t, g.DescriptorsCount(x0), test.ShouldEqual, 1)
}

func TestBoundingBox(t *testing.T) {
	g := NewGraph(golog.NewTestLogger(t))
	x0 := symbol.New('x', 0)

	box := spatialmath.NewAxisAlignedBox(r3.Vector{X: -1, Y: -1, Z: -1}, r3.Vector{X: 1, Y: 1, Z: 1})
	err := g.SetBoundingBox(x0, box)
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)
	_, err = g.BoundingBox(x0)
	test.That(t, err, test.ShouldWrap, ErrUnknownFrame)

	test.That(t, g.AddFrame(x0), test.ShouldBeNil)
	test.That(t, g.HasBoundingBox(x0), test.ShouldBeFalse)
	_, err = g.BoundingBox(x0)
	test.That(t, err, test.ShouldWrap, ErrItemNotFound)

	test.That(t, g.SetBoundingBox(x0, box), test.ShouldBeNil)
	test.That(t, g.HasBoundingBox(x0), test.ShouldBeTrue)
	got, err := g.BoundingBox(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Min(), test.ShouldResemble, box.Min())
	test.That(t, got.Max(), test.ShouldResemble, box.Max())

	// a frame holds a single box slot
	wider := spatialmath.NewAxisAlignedBox(r3.Vector{X: -2, Y: -2, Z: -2}, r3.Vector{X: 2, Y: 2, Z: 2})
	test.That(t, g.SetBoundingBox(x0, wider), test.ShouldBeNil)
	got, err = g.BoundingBox(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Min(), test.ShouldResemble, wider.Min())
}

func TestTransforms(t *testing.T) {
	g := NewGraph(golog.NewTestLogger(t))
	x0 := symbol.New('x', 0)
	x1 := symbol.New('x', 1)

	test.That(t, g.EdgeCount(), test.ShouldEqual, 0)
	test.That(t, g.Transforms(x0, x1), test.ShouldBeNil)

	tr := Transform{At: time.Unix(1, 0), Pose: spatialmath.NewPoseFromPoint(r3.Vector{X: 1})}
	g.AddTransform(x0, x1, tr)
	test.That(t, g.HasFrame(x0), test.ShouldBeTrue)
	test.That(t, g.HasFrame(x1), test.ShouldBeTrue)
	test.That(t, g.EdgeCount(), test.ShouldEqual, 1)

	// parallel edges accumulate in insertion order
	g.AddTransform(x0, x1, Transform{At: time.Unix(2, 0), Pose: spatialmath.NewPoseFromPoint(r3.Vector{X: 2})})
	trs := g.Transforms(x0, x1)
	test.That(t, trs, test.ShouldHaveLength, 2)
	test.That(t, trs[0].Pose.Point(), test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, trs[1].Pose.Point(), test.ShouldResemble, r3.Vector{X: 2})
	test.That(t, g.EdgeCount(), test.ShouldEqual, 2)

	// edges are directed
	test.That(t, g.Transforms(x1, x0), test.ShouldBeNil)

	// the returned slice is a copy
	trs[0] = Transform{}
	fresh := g.Transforms(x0, x1)
	test.That(t, fresh[0].Pose.Point(), test.ShouldResemble, r3.Vector{X: 1})
}
