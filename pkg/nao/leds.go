package nao

// RGB is a color with float intensities in [0, 1] per channel.
type RGB struct {
	R float32
	G float32
	B float32
}

// Common LED colors.
var (
	Off     = RGB{}
	White   = RGB{R: 1, G: 1, B: 1}
	Red     = RGB{R: 1}
	Green   = RGB{G: 1}
	Blue    = RGB{B: 1}
	Yellow  = RGB{R: 1, G: 1}
	Cyan    = RGB{G: 1, B: 1}
	Magenta = RGB{R: 1, B: 1}
)

// Scale returns the color with every channel multiplied by f.
func (c RGB) Scale(f float32) RGB {
	return RGB{R: c.R * f, G: c.G * f, B: c.B * f}
}

// EarLeds are the ten white LEDs around one ear, index 0 at the
// bottom, increasing clockwise as seen from the outside.
type EarLeds [10]float32

// EyeLeds are the eight RGB LEDs around one eye, index 0 at the top,
// increasing clockwise as seen from the front.
type EyeLeds [8]RGB

// SkullLeds are the twelve white LEDs on top of the head, left side
// front-to-rear first, then the right side rear-to-front.
type SkullLeds [12]float32

// FillEar returns an EarLeds with all segments at intensity v.
func FillEar(v float32) EarLeds {
	var e EarLeds
	for i := range e {
		e[i] = v
	}
	return e
}

// FillEye returns an EyeLeds with all segments set to c.
func FillEye(c RGB) EyeLeds {
	var e EyeLeds
	for i := range e {
		e[i] = c
	}
	return e
}

// FillSkull returns a SkullLeds with all segments at intensity v.
func FillSkull(v float32) SkullLeds {
	var s SkullLeds
	for i := range s {
		s[i] = v
	}
	return s
}

// LedState aggregates every LED group on the robot. The zero value
// turns everything off.
type LedState struct {
	LeftEar   EarLeds
	RightEar  EarLeds
	LeftEye   EyeLeds
	RightEye  EyeLeds
	Chest     RGB
	LeftFoot  RGB
	RightFoot RGB
	Skull     SkullLeds
}
