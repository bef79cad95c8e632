// Package memory manages the GPU vertex buffer shared by everything the
// viewer draws.
//
// Each drawable (thumbnail, fullscreen image, close glyph) owns a slot: a
// contiguous range of the one VBO. Slots are packed in SlotID order, so the
// draw order is fixed and a slot can be drawn with a single DrawArrays call.
// The CPU-side copy is re-uploaded lazily before the next draw whenever any
// slot changed; the buffer only ever grows.
package memory

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var memoryLogger *log.Logger = log.New(io.Discard, "", 0)

func init() {
	if os.Getenv("LIGHTBOX_DEBUG_MEMORY") == "1" {
		memoryLogger = log.New(os.Stdout, "[memory] ", log.Ltime|log.Lmsgprefix)
	}
}

// Vertex layout: x, y, u, v, r, g, b, a.
const (
	FloatsPerVertex = 8
	bytesPerFloat   = 4
	vertexStride    = FloatsPerVertex * bytesPerFloat

	initialCapacityBytes = 64 * vertexStride
)

// SlotID identifies a drawable's range in the shared buffer.
type SlotID int

const (
	SlotThumbnail SlotID = iota // inline image
	SlotImage                   // fullscreen image
	SlotGlyph                   // close button
	NumSlots
)

func (id SlotID) String() string {
	switch id {
	case SlotThumbnail:
		return "thumbnail"
	case SlotImage:
		return "image"
	case SlotGlyph:
		return "glyph"
	default:
		return fmt.Sprintf("slot(%d)", int(id))
	}
}

// Range is a slot's position in the packed buffer, in vertices.
type Range struct {
	First int
	Count int
}

// Stats tracks buffer usage.
type Stats struct {
	TotalVertices     int
	TotalGPUBytes     int
	DrawCallsPerFrame int
	Uploads           int64
}

// MemoryController owns the VAO/VBO pair and the per-slot vertex data.
type MemoryController struct {
	vao, vbo      uint32
	capacityBytes int

	slots  [NumSlots][]float32
	ranges [NumSlots]Range
	dirty  bool
	stats  Stats
}

// NewMemoryController creates the GL objects. A current GL context is
// required.
func NewMemoryController() *MemoryController {
	mc := &MemoryController{capacityBytes: initialCapacityBytes}

	gl.GenVertexArrays(1, &mc.vao)
	gl.GenBuffers(1, &mc.vbo)

	gl.BindVertexArray(mc.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, mc.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, mc.capacityBytes, nil, gl.DYNAMIC_DRAW)

	// - Attribute 0: position (vec2)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	// - Attribute 1: texture coordinate (vec2)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(2*bytesPerFloat))
	// - Attribute 2: color (vec4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, vertexStride, gl.PtrOffset(4*bytesPerFloat))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return mc
}

// EnsureSlot replaces a slot's vertices. An empty slice clears the slot.
func (mc *MemoryController) EnsureSlot(id SlotID, vertices []float32) error {
	if id < 0 || id >= NumSlots {
		return fmt.Errorf("unknown slot %d", int(id))
	}
	if len(vertices)%FloatsPerVertex != 0 {
		return fmt.Errorf("slot %s: %d floats is not a whole number of vertices", id, len(vertices))
	}
	mc.slots[id] = append(mc.slots[id][:0], vertices...)
	mc.dirty = true
	return nil
}

// Draw uploads pending changes and draws every non-empty slot in order,
// calling before(id) first so the caller can set per-slot state (textures,
// uniforms).
func (mc *MemoryController) Draw(before func(SlotID)) error {
	if mc.dirty {
		if err := mc.upload(); err != nil {
			return err
		}
	}

	drawCalls := 0
	gl.BindVertexArray(mc.vao)
	for id := SlotID(0); id < NumSlots; id++ {
		r := mc.ranges[id]
		if r.Count == 0 {
			continue
		}
		if before != nil {
			before(id)
		}
		gl.DrawArrays(gl.TRIANGLES, int32(r.First), int32(r.Count))
		drawCalls++
	}
	gl.BindVertexArray(0)

	mc.stats.DrawCallsPerFrame = drawCalls
	return nil
}

func (mc *MemoryController) upload() error {
	flat, ranges := pack(mc.slots[:])
	copy(mc.ranges[:], ranges)

	size := len(flat) * bytesPerFloat
	gl.BindBuffer(gl.ARRAY_BUFFER, mc.vbo)
	if size > mc.capacityBytes {
		newCapacity := growCapacity(mc.capacityBytes, size)
		memoryLogger.Printf("growing VBO: %d -> %d bytes", mc.capacityBytes, newCapacity)
		gl.BufferData(gl.ARRAY_BUFFER, newCapacity, nil, gl.DYNAMIC_DRAW)
		mc.capacityBytes = newCapacity
	}
	if size > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(flat))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("uploading %d bytes: GL error 0x%x", size, glErr)
	}

	mc.dirty = false
	mc.stats.TotalVertices = len(flat) / FloatsPerVertex
	mc.stats.TotalGPUBytes = mc.capacityBytes
	mc.stats.Uploads++
	return nil
}

// Cleanup releases all OpenGL resources.
func (mc *MemoryController) Cleanup() {
	gl.DeleteBuffers(1, &mc.vbo)
	gl.DeleteVertexArrays(1, &mc.vao)
}

// Stats returns current memory statistics.
func (mc *MemoryController) Stats() Stats {
	return mc.stats
}

// pack concatenates slot data in slot order and returns each slot's vertex
// range within the result.
func pack(slots [][]float32) ([]float32, []Range) {
	total := 0
	for _, s := range slots {
		total += len(s)
	}

	flat := make([]float32, 0, total)
	ranges := make([]Range, len(slots))
	for i, s := range slots {
		ranges[i] = Range{First: len(flat) / FloatsPerVertex, Count: len(s) / FloatsPerVertex}
		flat = append(flat, s...)
	}
	return flat, ranges
}

// growCapacity doubles capacity until it holds need bytes.
func growCapacity(capacity, need int) int {
	if capacity <= 0 {
		capacity = initialCapacityBytes
	}
	for capacity < need {
		capacity *= 2
	}
	return capacity
}
