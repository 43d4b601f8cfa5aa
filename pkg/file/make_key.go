package file

import "fmt"

// MakeVideoKey builds the object key videos/{orientation}/{name}.{ext}.
func MakeVideoKey(orientation, name, ext string) string {
	return fmt.Sprintf("videos/%s/%s.%s", orientation, name, ext)
}
