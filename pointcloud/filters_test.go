package pointcloud

import (
	"image/color"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

// clusterWithOutlier is a tight cluster of points plus one point far away.
func clusterWithOutlier(t *testing.T) PointCloud {
	t.Helper()
	pc := NewBasicEmpty()
	for _, pt := range []r3.Vector{
		{0, 0, 0},
		{0.1, 0, 0},
		{0, 0.1, 0},
		{0, 0, 0.1},
		{0.1, 0.1, 0},
		{0.1, 0, 0.1},
		{0, 0.1, 0.1},
		{0.1, 0.1, 0.1},
	} {
		test.That(t, pc.Set(pt, NewBasicData()), test.ShouldBeNil)
	}
	test.That(t, pc.Set(r3.Vector{X: 100, Y: 100, Z: 100}, NewBasicData()), test.ShouldBeNil)
	return pc
}

func TestStatisticalOutlierRemoval(t *testing.T) {
	pc := clusterWithOutlier(t)
	out, err := StatisticalOutlierRemoval(pc, 3, 1.0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Size(), test.ShouldEqual, 8)
	_, found := out.At(100, 100, 100)
	test.That(t, found, test.ShouldBeFalse)
	_, found = out.At(0, 0, 0)
	test.That(t, found, test.ShouldBeTrue)

	_, err = StatisticalOutlierRemoval(pc, 0, 1.0)
	test.That(t, err, test.ShouldNotBeNil)

	// too few points to form neighborhoods passes everything through
	tiny := NewBasicEmpty()
	test.That(t, tiny.Set(r3.Vector{X: 1}, NewBasicData()), test.ShouldBeNil)
	out, err = StatisticalOutlierRemoval(tiny, 3, 1.0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Size(), test.ShouldEqual, 1)
}

func TestRadiusOutlierRemoval(t *testing.T) {
	pc := clusterWithOutlier(t)
	out, err := RadiusOutlierRemoval(pc, 0.5, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Size(), test.ShouldEqual, 8)
	_, found := out.At(100, 100, 100)
	test.That(t, found, test.ShouldBeFalse)

	_, err = RadiusOutlierRemoval(pc, 0, 2)
	test.That(t, err, test.ShouldNotBeNil)

	// with no neighbor requirement everything survives
	out, err = RadiusOutlierRemoval(pc, 0.5, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Size(), test.ShouldEqual, 9)
}

func TestRemoveColorless(t *testing.T) {
	pc := NewBasicEmpty()
	test.That(t, pc.Set(r3.Vector{X: 1}, NewColoredData(color.NRGBA{10, 20, 30, 255})), test.ShouldBeNil)
	test.That(t, pc.Set(r3.Vector{X: 2}, NewBasicData()), test.ShouldBeNil)
	test.That(t, pc.Set(r3.Vector{X: 3}, NewValueData(5)), test.ShouldBeNil)

	out, err := RemoveColorless(pc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Size(), test.ShouldEqual, 1)
	d, found := out.At(1, 0, 0)
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, d.HasColor(), test.ShouldBeTrue)
}
