package detection

const (
	// DiffThreshold is the per-pixel intensity delta (out of 255) above which
	// a pixel counts as changed.
	DiffThreshold = 45
	// DilateIterations is how many times the binary mask is dilated before
	// contours are extracted.
	DilateIterations = 2
	// DefaultMinArea is the minimum contour area, in pixels, for a region to
	// contribute to the change score.
	DefaultMinArea = 450.0
)

// DefaultBlurRadii are the Gaussian kernel sizes applied in sequence.
var DefaultBlurRadii = []int{3, 5}

// DefaultBorder masks the camera mount on the sides and the timestamp overlay
// at the top.
var DefaultBorder = BorderSpec{Left: 5, Top: 10, Right: 5, Bottom: 0}
