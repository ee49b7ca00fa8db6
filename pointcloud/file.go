package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
)

// PCDType is the format of a pcd file.
type PCDType int

const (
	// PCDAscii ascii format for pcd.
	PCDAscii PCDType = 0
	// PCDBinary binary format for pcd.
	PCDBinary PCDType = 1
)

func _colorToPCDInt(pt Data) int {
	if pt == nil || !pt.HasColor() {
		return 255 << 16
	}

	r, g, b := pt.RGB255()
	x := 0

	x |= (int(r) << 16)
	x |= (int(g) << 8)
	x |= (int(b) << 0)
	return x
}

// ToPCD writes the cloud to the writer in PCD format.
func ToPCD(cloud PointCloud, out io.Writer, outputType PCDType) error {
	var err error

	_, err = fmt.Fprintf(out, "VERSION .7\n")
	if err != nil {
		return err
	}
	if cloud.MetaData().HasColor {
		_, err = fmt.Fprintf(out, "FIELDS x y z rgb\n"+
			"SIZE 4 4 4 4\n"+
			"TYPE F F F I\n"+
			"COUNT 1 1 1 1\n")
	} else {
		_, err = fmt.Fprintf(out, "FIELDS x y z\n"+
			"SIZE 4 4 4\n"+
			"TYPE F F F\n"+
			"COUNT 1 1 1\n")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "WIDTH %d\n"+
		"HEIGHT %d\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n",
		cloud.Size(),
		1,
		cloud.Size())
	if err != nil {
		return err
	}

	switch outputType {
	case PCDBinary:
		_, err = fmt.Fprintf(out, "DATA binary\n")
	case PCDAscii:
		_, err = fmt.Fprintf(out, "DATA ascii\n")
	default:
		return fmt.Errorf("unsupported pcd data type %v", outputType)
	}
	if err != nil {
		return err
	}
	return writePCDData(cloud, out, outputType)
}

func writePCDData(cloud PointCloud, out io.Writer, pcdtype PCDType) error {
	var err error
	hasColor := cloud.MetaData().HasColor
	cloud.Iterate(0, 0, func(pos r3.Vector, d Data) bool {
		if hasColor {
			c := _colorToPCDInt(d)
			switch pcdtype {
			case PCDBinary:
				buf := make([]byte, 16)
				binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(pos.X)))
				binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(pos.Y)))
				binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(pos.Z)))
				binary.LittleEndian.PutUint32(buf[12:], uint32(c))
				_, err = out.Write(buf)
			case PCDAscii:
				_, err = fmt.Fprintf(out, "%f %f %f %d\n", pos.X, pos.Y, pos.Z, c)
			}
		} else {
			switch pcdtype {
			case PCDBinary:
				buf := make([]byte, 12)
				binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(pos.X)))
				binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(pos.Y)))
				binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(pos.Z)))
				_, err = out.Write(buf)
			case PCDAscii:
				_, err = fmt.Fprintf(out, "%f %f %f\n", pos.X, pos.Y, pos.Z)
			}
		}
		return err == nil
	})
	return err
}

// ToPLY writes the cloud to the writer as an ASCII PLY file. Colored clouds
// carry uchar red, green, blue and alpha vertex properties; points without
// color in a colored cloud are written white.
func ToPLY(cloud PointCloud, out io.Writer) error {
	w := bufio.NewWriter(out)
	hasColor := cloud.MetaData().HasColor

	var err error
	_, err = fmt.Fprintf(w, "ply\nformat ascii 1.0\nelement vertex %d\n"+
		"property float x\nproperty float y\nproperty float z\n", cloud.Size())
	if err != nil {
		return multierr.Combine(err, w.Flush())
	}
	if hasColor {
		_, err = fmt.Fprintf(w, "property uchar red\nproperty uchar green\nproperty uchar blue\nproperty uchar alpha\n")
		if err != nil {
			return multierr.Combine(err, w.Flush())
		}
	}
	if _, err = fmt.Fprintf(w, "end_header\n"); err != nil {
		return multierr.Combine(err, w.Flush())
	}

	cloud.Iterate(0, 0, func(pos r3.Vector, d Data) bool {
		_, err = fmt.Fprintf(w, "%g %g %g ", pos.X, pos.Y, pos.Z)
		if err == nil && hasColor {
			r, g, b, a := uint8(255), uint8(255), uint8(255), uint8(255)
			if d != nil && d.HasColor() {
				r, g, b = d.RGB255()
				if nrgba, ok := d.Color().(*color.NRGBA); ok {
					a = nrgba.A
				}
			}
			_, err = fmt.Fprintf(w, "%d %d %d %d ", r, g, b, a)
		}
		if err == nil {
			_, err = fmt.Fprintf(w, "\n")
		}
		return err == nil
	})
	return multierr.Combine(err, w.Flush())
}
