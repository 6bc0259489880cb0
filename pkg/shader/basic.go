package shader

// BasicVertex passes the per-vertex color through and projects the position
// with the MVP uniform. Attribute 0 is position, attribute 1 is color.
const BasicVertex = `#version 330 core

layout (location = 0) in vec3 Position_b;
layout (location = 1) in vec3 Color_b;

uniform mat4 MVP;

out vec3 Color;

void main()
{
	gl_Position = MVP * vec4(Position_b, 1.0);
	Color = Color_b;
}
`

// BasicFragment uses the vertex color while wire.r is negative and the
// wire tint otherwise.
const BasicFragment = `#version 330 core

in vec3 Color;

uniform vec3 wire = vec3(-1, -1, -1);

out vec4 Fragment;

void main()
{
	Fragment = vec4(Color, 1);

	if (wire.r >= 0.0)
		Fragment = vec4(wire, 1);
}
`
