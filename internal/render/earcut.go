package render

import (
	"fmt"

	"github.com/rclancey/earcut"

	"github.com/irfansharif/lightbox/internal/geom"
)

// earClip triangulates a simple polygon using the earcut algorithm. It takes
// the polygon's vertices in order and returns triangles as index triples into
// that slice, so callers can carry per-vertex attributes (texture
// coordinates) through triangulation.
func earClip(polygonPoints []geom.Point) ([][3]int, error) {
	if len(polygonPoints) < 3 {
		return nil, fmt.Errorf("degenerate polygon (%d vertices < 3)", len(polygonPoints))
	}

	// Convert polygon points to flat coordinate array required by earcut.
	// Format: [x0, y0, x1, y1, ..., xn, yn]
	vertexCoords := make([]float64, len(polygonPoints)*2)
	for i, point := range polygonPoints {
		vertexCoords[i*2] = point.X   // x coordinate
		vertexCoords[i*2+1] = point.Y // y coordinate
	}

	triangleIndices, err := earcut.Earcut(vertexCoords, nil /* holeIndices */, 2 /* dim */)
	if err != nil {
		return nil, fmt.Errorf("triangulation failed for %d-vertex polygon: %w", len(polygonPoints), err)
	}
	if len(triangleIndices)%3 != 0 {
		return nil, fmt.Errorf("invalid triangle count (indices: %d, not divisible by 3)", len(triangleIndices))
	}

	triangles := make([][3]int, len(triangleIndices)/3)
	for i := range triangles {
		triangles[i] = [3]int{
			triangleIndices[i*3],
			triangleIndices[i*3+1],
			triangleIndices[i*3+2],
		}
	}
	return triangles, nil
}
