package sam

import (
	"context"
	"image/color"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/sam/pointcloud"
)

// A PointBatch is one sensor sweep of points with optional per-point colors.
// Width and Height describe the sensor's organized grid layout when known;
// unorganized batches leave them zero.
type PointBatch struct {
	Points []r3.Vector
	Colors []color.NRGBA
	Width  int
	Height int
}

// Organized reports whether the batch carries a complete organized grid.
func (b PointBatch) Organized() bool {
	return b.Width > 0 && b.Height > 0 && b.Width*b.Height == len(b.Points)
}

// A CloudIngester turns a raw point batch into the filtered cloud stored on
// a pose frame.
type CloudIngester interface {
	Ingest(ctx context.Context, batch PointBatch) (pointcloud.PointCloud, error)
}

type defaultIngester struct {
	cfg    Config
	logger golog.Logger
}

// newDefaultIngester builds the in-tree filter chain: bilateral depth
// smoothing on organized batches, radius outlier removal, voxel
// downsampling, statistical outlier removal and finally dropping colorless
// points. Stages not selected by the config pass the cloud through.
func newDefaultIngester(cfg Config, logger golog.Logger) CloudIngester {
	return &defaultIngester{cfg: cfg, logger: logger}
}

func (ing *defaultIngester) Ingest(ctx context.Context, batch PointBatch) (pointcloud.PointCloud, error) {
	if len(batch.Colors) > 0 && len(batch.Colors) != len(batch.Points) {
		return nil, errors.Errorf("point batch has %d colors for %d points", len(batch.Colors), len(batch.Points))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points := batch.Points
	if batch.Organized() && ing.cfg.Filter.SpatialSigma > 0 && ing.cfg.Filter.RangeSigma > 0 {
		points = bilateralFilterDepth(batch, ing.cfg.Filter)
	}

	cloud := pointcloud.NewBasicPointCloud(len(points))
	for i, p := range points {
		var data pointcloud.Data
		if len(batch.Colors) > 0 {
			data = pointcloud.NewColoredData(batch.Colors[i])
		}
		if err := cloud.Set(p, data); err != nil {
			return nil, err
		}
	}

	var err error
	if ing.cfg.Outlier.Type == OutlierRadius {
		cloud, err = pointcloud.RadiusOutlierRemoval(cloud, ing.cfg.Outlier.ParamOne, int(ing.cfg.Outlier.ParamTwo))
		if err != nil {
			return nil, err
		}
	}
	if ing.cfg.DownsampleSize > 0 {
		cloud, err = pointcloud.VoxelDownsample(cloud, ing.cfg.DownsampleSize)
		if err != nil {
			return nil, err
		}
	}
	if ing.cfg.Outlier.Type == OutlierStatistical {
		cloud, err = pointcloud.StatisticalOutlierRemoval(cloud, int(ing.cfg.Outlier.ParamOne), ing.cfg.Outlier.ParamTwo)
		if err != nil {
			return nil, err
		}
	}
	if len(batch.Colors) > 0 {
		cloud, err = pointcloud.RemoveColorless(cloud)
		if err != nil {
			return nil, err
		}
	}
	ing.logger.Debugf("ingested %d raw points into a cloud of %d", len(batch.Points), cloud.Size())
	return cloud, nil
}

// bilateralFilterDepth smooths the depth coordinate of an organized batch
// with a joint gaussian over grid distance and depth difference. X and Y
// stay put and holes (NaN depth) are left untouched.
func bilateralFilterDepth(batch PointBatch, cfg BilateralFilterConfig) []r3.Vector {
	window := int(math.Ceil(2 * cfg.SpatialSigma))
	if window < 1 {
		window = 1
	}
	spatialVar := cfg.SpatialSigma * cfg.SpatialSigma
	rangeVar := cfg.RangeSigma * cfg.RangeSigma

	out := make([]r3.Vector, len(batch.Points))
	copy(out, batch.Points)
	for v := 0; v < batch.Height; v++ {
		for u := 0; u < batch.Width; u++ {
			center := batch.Points[v*batch.Width+u]
			if math.IsNaN(center.Z) {
				continue
			}
			var weightSum, depthSum float64
			for dv := -window; dv <= window; dv++ {
				for du := -window; du <= window; du++ {
					uu, vv := u+du, v+dv
					if uu < 0 || uu >= batch.Width || vv < 0 || vv >= batch.Height {
						continue
					}
					neighbor := batch.Points[vv*batch.Width+uu]
					if math.IsNaN(neighbor.Z) {
						continue
					}
					depthDiff := neighbor.Z - center.Z
					weight := math.Exp(-float64(du*du+dv*dv)/(2*spatialVar)) *
						math.Exp(-depthDiff*depthDiff/(2*rangeVar))
					weightSum += weight
					depthSum += weight * neighbor.Z
				}
			}
			if weightSum > 0 {
				out[v*batch.Width+u].Z = depthSum / weightSum
			}
		}
	}
	return out
}
