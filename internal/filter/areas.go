package filter

// TC335A meshes: the terrain id is the polygon area, the polygon flag is 1<<(11-id).
const (
	Area335aGround      uint8 = 11
	Area335aGroundSteep uint8 = 10
	Area335aWater       uint8 = 9
	Area335aMagmaSlime  uint8 = 8

	Flag335aEmpty       uint16 = 0
	Flag335aGround      uint16 = 1 << (Area335aGround - Area335aGround)
	Flag335aGroundSteep uint16 = 1 << (Area335aGround - Area335aGroundSteep)
	Flag335aWater       uint16 = 1 << (Area335aGround - Area335aWater)
	Flag335aMagmaSlime  uint16 = 1 << (Area335aGround - Area335aMagmaSlime)
)

// SF548 meshes keep magma and slime apart.
const (
	Area548Ground uint8 = 11
	Area548Magma  uint8 = 10
	Area548Slime  uint8 = 9
	Area548Water  uint8 = 8

	Flag548Empty  uint16 = 0
	Flag548Ground uint16 = 1 << 0
	Flag548Magma  uint16 = 1 << 1
	Flag548Slime  uint16 = 1 << 2
	Flag548Water  uint16 = 1 << 3
)

// ANP polygon flags.
const (
	FlagAnpEmpty     uint16 = 0
	FlagAnpLavaSlime uint16 = 1 << 0
	FlagAnpWater     uint16 = 1 << 1
	FlagAnpGround    uint16 = 1 << 2
	FlagAnpRoad      uint16 = 1 << 3
	FlagAnpAlliance  uint16 = 1 << 4
	FlagAnpHorde     uint16 = 1 << 5
)

// ANP area ids. Every terrain kind has a neutral, alliance and horde variant, in that order.
const (
	AreaAnpNone uint8 = iota
	AreaAnpLava
	AreaAnpLavaAlliance
	AreaAnpLavaHorde
	AreaAnpSlime
	AreaAnpSlimeAlliance
	AreaAnpSlimeHorde
	AreaAnpOcean
	AreaAnpOceanAlliance
	AreaAnpOceanHorde
	AreaAnpWater
	AreaAnpWaterAlliance
	AreaAnpWaterHorde
	AreaAnpGround
	AreaAnpGroundAlliance
	AreaAnpGroundHorde
	AreaAnpRoad
	AreaAnpRoadAlliance
	AreaAnpRoadHorde
	AreaAnpCity
	AreaAnpCityAlliance
	AreaAnpCityHorde
	AreaAnpWMO
	AreaAnpWMOAlliance
	AreaAnpWMOHorde
	AreaAnpDoodad
	AreaAnpDoodadAlliance
	AreaAnpDoodadHorde
)

// anpKinds lists the neutral area id of every ANP terrain kind.
var anpKinds = [...]uint8{
	AreaAnpLava, AreaAnpSlime, AreaAnpOcean, AreaAnpWater,
	AreaAnpGround, AreaAnpRoad, AreaAnpCity, AreaAnpWMO, AreaAnpDoodad,
}
