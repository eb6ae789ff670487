package vkcube

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

//Vertex is the fixed vertex format: position, color, texture coordinate.
type Vertex struct {
	Pos      [3]float32
	Color    [3]float32
	TexCoord [2]float32
}

var vertexStride = uint32(unsafe.Sizeof(Vertex{}))

func vertexBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    vertexStride,
		InputRate: vk.VertexInputRateVertex,
	}
}

func vertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Pos))},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Color))},
		{Binding: 0, Location: 2, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.TexCoord))},
	}
}

//Mesh is indexed triangle-list geometry ready for upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

//NewCuboid builds an axis-aligned box centered on the origin with half extents hx, hy, hz.
//Each face has its own four vertices so texture coordinates stay per face. Faces wind
//counter-clockwise seen from outside.
func NewCuboid(hx, hy, hz float32) Mesh {
	type face struct {
		corners [4][3]float32
		color   [3]float32
	}
	faces := []face{
		{[4][3]float32{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}, [3]float32{1, 0, 0}},
		{[4][3]float32{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}, [3]float32{0, 1, 0}},
		{[4][3]float32{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}, [3]float32{0, 0, 1}},
		{[4][3]float32{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}, [3]float32{1, 1, 0}},
		{[4][3]float32{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}, [3]float32{0, 1, 1}},
		{[4][3]float32{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}, [3]float32{1, 0, 1}},
	}
	uv := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	var mesh Mesh
	for _, f := range faces {
		base := uint16(len(mesh.Vertices))
		for i, c := range f.corners {
			mesh.Vertices = append(mesh.Vertices, Vertex{Pos: c, Color: f.color, TexCoord: uv[i]})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return mesh
}

func (m Mesh) VertexBytes() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Vertices[0])), len(m.Vertices)*int(vertexStride))
}

func (m Mesh) IndexBytes() []byte {
	if len(m.Indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Indices[0])), len(m.Indices)*2)
}
