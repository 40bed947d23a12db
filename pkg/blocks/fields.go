package blocks

// Field names read from shapes, skin blocks and vertex rows.
const (
	FieldName           = "Name"
	FieldChildren       = "Children"
	FieldVertexData     = "Vertex Data"
	FieldTriangles      = "Triangles"
	FieldNumVertices    = "Num Vertices"
	FieldNumTriangles   = "Num Triangles"
	FieldDataSize       = "Data Size"
	FieldVertexSize     = "Vertex Size"
	FieldVertexFlags    = "VF"
	FieldVertex         = "Vertex"
	FieldVertices       = "Vertices"
	FieldUV             = "UV"
	FieldNormal         = "Normal"
	FieldTangent        = "Tangent"
	FieldBitangentX     = "Bitangent X"
	FieldBitangentY     = "Bitangent Y"
	FieldBitangentZ     = "Bitangent Z"
	FieldVertexColors   = "Vertex Colors"
	FieldBoneWeights    = "Bone Weights"
	FieldBoneIndices    = "Bone Indices"
	FieldSkin           = "Skin"
	FieldData           = "Data"
	FieldSkinPartition  = "Skin Partition"
	FieldSkeletonRoot   = "Skeleton Root"
	FieldBones          = "Bones"
	FieldBoneList       = "Bone List"
	FieldRotation       = "Rotation"
	FieldTranslation    = "Translation"
	FieldScale          = "Scale"
	FieldBoundingSphere = "Bounding Sphere"
	FieldCenter         = "Center"
	FieldRadius         = "Radius"
	FieldPartition      = "Partition"
	FieldShaderProperty = "Shader Property"
	FieldShaderFlags2   = "Shader Flags 2"
)

// VertexFlagSkinned marks a shape whose vertices carry bone weights.
const VertexFlagSkinned = 0x400

// Second shader flag word bits.
const (
	ShaderFlag2VertexColors = 1 << 5
	ShaderFlag2TreeAnim     = 1 << 29
)
