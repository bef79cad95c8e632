package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ShaderManager handles OpenGL shader program compilation, linking, and uniform
// management.
type ShaderManager struct {
	program    uint32 // program ID
	uTransform int32  // uniform location for transformation matrix
	uTextured  int32  // uniform location for the texture toggle
	uTexture   int32  // uniform location for the sampler
}

// Vertex shader. Applies the uniform transformation matrix to the vertices and
// forwards texture coordinates and color to the fragment shader.
const vertexShaderSource = `
#version 330 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
layout (location = 2) in vec4 aColor;

uniform mat4 uTransform;

out vec2 vUV;
out vec4 vColor;

void main() {
    gl_Position = uTransform * vec4(aPos, 0.0, 1.0);
    vUV = aUV;
    vColor = aColor;
}
` + "\x00"

// Fragment shader. Textured draws are tinted by the vertex color (which
// carries opacity); untextured draws use the color as is.
const fragmentShaderSource = `
#version 330 core
in vec2 vUV;
in vec4 vColor;
out vec4 FragColor;

uniform sampler2D uTexture;
uniform bool uTextured;

void main() {
    if (uTextured) {
        FragColor = texture(uTexture, vUV) * vColor;
    } else {
        FragColor = vColor;
    }
}
` + "\x00"

// NewShaderManager creates and initializes a new shader manager with compiled
// and linked shaders.
func NewShaderManager() (*ShaderManager, error) {
	sm := &ShaderManager{}

	vertexShader, err := sm.compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := sm.compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fragmentShader)

	// Link shader program.
	sm.program = gl.CreateProgram()
	gl.AttachShader(sm.program, vertexShader)
	gl.AttachShader(sm.program, fragmentShader)
	gl.LinkProgram(sm.program)

	// Check linking status.
	var status int32
	gl.GetProgramiv(sm.program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(sm.program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(sm.program, logLength, nil, gl.Str(logText))
		return nil, fmt.Errorf("shader linking failed: %s", logText)
	}

	sm.uTransform = gl.GetUniformLocation(sm.program, gl.Str("uTransform\x00"))
	sm.uTextured = gl.GetUniformLocation(sm.program, gl.Str("uTextured\x00"))
	sm.uTexture = gl.GetUniformLocation(sm.program, gl.Str("uTexture\x00"))
	gl.UseProgram(sm.program) // bind the shader program
	gl.Uniform1i(sm.uTexture, 0)
	return sm, nil
}

// SetTransform sets the uniform transformation matrix.
func (sm *ShaderManager) SetTransform(matrix [16]float32) {
	gl.UniformMatrix4fv(sm.uTransform, 1, false, &matrix[0])
}

// SetTextured toggles sampling from texture unit 0.
func (sm *ShaderManager) SetTextured(textured bool) {
	var v int32
	if textured {
		v = 1
	}
	gl.Uniform1i(sm.uTextured, v)
}

// Cleanup deletes the program.
func (sm *ShaderManager) Cleanup() {
	gl.DeleteProgram(sm.program)
}

// compileShader compiles a single shader from source.
func (sm *ShaderManager) compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	// Check compilation status.
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compilation failed: %s", logText)
	}

	return shader, nil
}
