package bildtext

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"k8s.io/klog/v2"
)

// Coordinate is a GPS position in signed decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64

	// Altitude is in meters above sea level.
	Altitude    float64
	HasAltitude bool
}

// ExtractGPS reads embedded EXIF GPS tags from an image. It returns nil if
// the image has no EXIF block, no GPS latitude tag, or malformed values:
// GPS absence is never a fatal condition for the caller.
func ExtractGPS(path string) *Coordinate {
	f, err := os.Open(path)
	if err != nil {
		klog.V(1).Infof("open %s: %v", path, err)
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		klog.V(1).Infof("no EXIF in %s: %v", path, err)
		return nil
	}

	lat, ok := coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	if !ok {
		return nil
	}

	lon, ok := coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	if !ok {
		return nil
	}

	c := &Coordinate{Latitude: lat, Longitude: lon}

	if alt, err := x.Get(exif.GPSAltitude); err == nil {
		if num, den, err := alt.Rat2(0); err == nil && den != 0 {
			c.Altitude = float64(num) / float64(den)
			c.HasAltitude = true
		}
	}

	return c
}

// coordinate reads one degree/minute/second rational triplet and its
// hemisphere reference tag, returning signed decimal degrees.
func coordinate(x *exif.Exif, field exif.FieldName, refField exif.FieldName) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, false
	}

	var dms [3][2]int64
	for i := 0; i < 3; i++ {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return 0, false
		}
		dms[i] = [2]int64{num, den}
	}

	ref := ""
	if rt, err := x.Get(refField); err == nil {
		ref, _ = rt.StringVal()
	}

	return toDecimal(dms, ref), true
}

// toDecimal converts a D°M′S″ rational triplet to decimal degrees, negated
// for southern and western hemisphere references.
func toDecimal(dms [3][2]int64, ref string) float64 {
	deg := float64(dms[0][0]) / float64(dms[0][1])
	min := float64(dms[1][0]) / float64(dms[1][1])
	sec := float64(dms[2][0]) / float64(dms[2][1])

	dec := deg + min/60.0 + sec/3600.0
	if ref == "S" || ref == "W" {
		dec = -dec
	}

	return dec
}
