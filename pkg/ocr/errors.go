package ocr

import "errors"

// ErrImage is returned when the input cannot be decoded as an image.
var ErrImage = errors.New("cannot decode image")

// ErrRecognition is returned when a text-recognition backend fails.
var ErrRecognition = errors.New("text recognition failed")
