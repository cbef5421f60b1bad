package simulation

// Tuning is set by feel, not derived. Distances are pitch units, speeds are
// units per second, timers are milliseconds.
const (
	PlayerRadius   = 1.4
	BallRadius     = 0.7
	FacingMinSpeed = 0.3

	SprintMultiplier   = 1.35
	DribbleSpeedFactor = 0.9
	StaminaDrainPerSec = 0.18
	StaminaRegenPerSec = 0.10

	// BallFrictionPerSec is the fraction of ball speed kept after one second.
	BallFrictionPerSec = 0.4
	// BallStopSpeed snaps slower balls to rest so they do not creep.
	BallStopSpeed   = 0.25
	WallRestitution = 0.65
	BumpElasticity  = 0.6

	// DribbleOffset is how far ahead of the carrier the owned ball sits.
	DribbleOffset = PlayerRadius + BallRadius*0.5

	// ClaimRadius and ClaimMaxSpeed gate the generic claim of a slow free ball.
	ClaimRadius   = PlayerRadius + BallRadius + 0.4
	ClaimMaxSpeed = 24.0
	// PickupRadius is the looser touch radius for immediate pickup. No speed ceiling.
	PickupRadius = PlayerRadius + BallRadius + 0.9

	// StealRadius is deliberately tighter than PickupRadius: defence is nerfed
	// relative to dribbling.
	StealRadius = PlayerRadius + BallRadius - 0.3
	// StealMinApproachSpeed is the velocity toward the ball a tackler needs;
	// standing next to the carrier is not enough.
	StealMinApproachSpeed = 4.0
	StealCooldownMs       = 650.0

	KickImmunityMs      = 250.0
	MinKickSpeed        = 12.0
	KickerVelocityCarry = 0.35

	ShootChargeMaxMs  = 900.0
	ShootBaseFactor   = 1.05
	ShootChargeFactor = 0.75

	PassChargeMaxMs    = 700.0
	PassTapThresholdMs = 160.0
	// A teammate is in the lane when within PassLaneHalfWidth of the aim ray
	// or within the cone whose half-angle cosine is PassLaneCos.
	PassLaneHalfWidth = 6.0
	PassLaneCos       = 0.8
	PassBaseFactor    = 0.55
	PassChargeFactor  = 0.5
	PassDistanceGain  = 0.6
	PassMaxFactor     = 1.7
	PassLeadSeconds   = 0.2

	AutoSwitchHysteresis   = 3.0
	AutoSwitchCooldownMs   = 300.0
	ManualSwitchCooldownMs = 250.0
	// ManualSwitchHoldOffMs keeps auto switching from undoing a manual pick.
	ManualSwitchHoldOffMs = 600.0
	ManualSwitchCos       = 0.3

	DangerShotSpeed   = 18.0
	DangerShotChannel = 4.0

	AIShootRange         = 30.0
	AIShootAlignFactor   = 2.0
	AIPressureRadius     = 7.0
	AIBasePassChance     = 0.008
	AICooldownMinMs      = 700.0
	AICooldownMaxMs      = 1300.0
	AIReceiveDelayMs     = 250.0
	AIJitterAmplitude    = 0.3
	AIJitterRate         = 2.4
	AIPassMinDist        = 6.0
	AIPassMaxDist        = 45.0
	AIPassMarkingRadius  = 3.0
	AILaneRiskRadius     = 3.0
	AIMinPassScore       = -8.0
	AIPressuredPassScore = -20.0

	NPCSpeedFactor        = 0.85
	NPCArriveRadius       = 4.0
	FarBallDistance       = 35.0
	LooseBallPull         = 0.3
	GoalkeeperLineOffset  = 2.5
	GoalkeeperTrackFactor = 0.6
)

// RoleTuning is the per-role movement and kicking profile.
type RoleTuning struct {
	MaxSpeed  float64
	Accel     float64
	KickPower float64
	// Leash is the furthest an NPC target may sit from its formation anchor.
	Leash float64
	// Advance is how far ahead of the ball a supporting teammate positions.
	Advance float64
	// Retreat is the fraction of the way from own goal to the ball a
	// defending player holds.
	Retreat float64
}

var roleTuning = map[Role]RoleTuning{
	RoleGoalkeeper: {MaxSpeed: 12, Accel: 55, KickPower: 32, Leash: 7, Advance: 0, Retreat: 0.05},
	RoleDefender:   {MaxSpeed: 14, Accel: 55, KickPower: 28, Leash: 24, Advance: -14, Retreat: 0.35},
	RoleMidfielder: {MaxSpeed: 15, Accel: 60, KickPower: 28, Leash: 30, Advance: 4, Retreat: 0.6},
	RoleForward:    {MaxSpeed: 16, Accel: 65, KickPower: 30, Leash: 32, Advance: 14, Retreat: 0.8},
}

// formationSlot places one roster slot as fractions of pitch width/height on
// the home side (attacking +x). The away side mirrors x.
type formationSlot struct {
	Role    Role
	Tag     string
	Anchor  [2]float64
	Kickoff [2]float64
}

var formation = []formationSlot{
	{Role: RoleGoalkeeper, Tag: "gk", Anchor: [2]float64{-0.45, 0}, Kickoff: [2]float64{-0.45, 0}},
	{Role: RoleDefender, Tag: "df", Anchor: [2]float64{-0.28, 0}, Kickoff: [2]float64{-0.3, 0}},
	{Role: RoleMidfielder, Tag: "mf", Anchor: [2]float64{-0.12, 0}, Kickoff: [2]float64{-0.16, 0}},
	{Role: RoleForward, Tag: "fw1", Anchor: [2]float64{0.06, -0.22}, Kickoff: [2]float64{-0.05, -0.18}},
	{Role: RoleForward, Tag: "fw2", Anchor: [2]float64{0.06, 0.22}, Kickoff: [2]float64{-0.05, 0.18}},
}
