package domain

// ImageFile is one file of a picker batch, read fully into memory.
type ImageFile struct {
	Name    string
	Content []byte
}
