package voxelrender

// Chunk meshes carry the occlusion factor in the position's w component;
// the shaders fold it into the vertex color so merged quads interpolate
// their corner shading across the face.

const vertexShaderSrc = `
#version 410 core

layout (location = 0) in vec4 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec4 aColor;

uniform mat4 uViewProj;
uniform mat4 uModel;
uniform vec3 uLightDir;

out vec4 vColor;

void main() {
	gl_Position = uViewProj * uModel * vec4(aPos.xyz, 1.0);

	vec3 n = normalize(mat3(uModel) * aNormal);
	float diffuse = max(dot(n, normalize(-uLightDir)), 0.0);
	float light = 0.55 + 0.45 * diffuse;

	vColor = vec4(aColor.rgb * light * aPos.w, aColor.a);
}
`

const fragmentShaderSrc = `
#version 410 core

in vec4 vColor;
out vec4 FragColor;

void main() {
	FragColor = vColor;
}
`
