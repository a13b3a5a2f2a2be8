package crunch

import "fmt"

// PackError reports a bitmap which can never be placed because it exceeds the
// page size even after trimming and rotation.
type PackError struct {
	Name string
}

func (e *PackError) Error() string {
	return fmt.Sprintf("packing failed, could not fit bitmap: %s", e.Name)
}
