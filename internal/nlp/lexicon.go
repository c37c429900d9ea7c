package nlp

// valence es un lexico reducido estilo AFINN (-5..5) para copy de marca en ingles.
var valence = map[string]float64{
	// positivas
	"amazing": 4, "awesome": 4, "beautiful": 3, "best": 3, "better": 2, "brilliant": 4,
	"celebrate": 3, "clean": 2, "clear": 1, "comfortable": 2, "confident": 2, "cool": 1,
	"delight": 3, "delighted": 3, "easy": 1, "effortless": 2, "effortlessly": 2, "empower": 2,
	"empowers": 2, "enjoy": 2, "enhance": 2, "excellent": 3, "excited": 3, "exciting": 3,
	"fantastic": 4, "fast": 1, "favorite": 2, "fun": 4, "glad": 3, "good": 3, "great": 3,
	"grow": 1, "happy": 3, "help": 2, "helps": 2, "helpful": 2, "ideal": 2, "impressive": 3,
	"innovative": 2, "inspire": 2, "inspiring": 3, "joy": 3, "kind": 2, "like": 2, "love": 3,
	"loved": 3, "lovely": 3, "nice": 3, "perfect": 3, "pleased": 3, "powerful": 2,
	"proud": 2, "recommend": 2, "reliable": 2, "safe": 1, "secure": 2, "securely": 2,
	"simple": 1, "smart": 1, "smooth": 2, "success": 2, "successful": 3, "superb": 5,
	"support": 2, "thank": 2, "thanks": 2, "thrilled": 5, "trust": 1, "trusted": 2,
	"welcome": 2, "win": 4, "wonderful": 4, "wow": 4,
	// negativas
	"angry": -3, "annoying": -2, "awful": -3, "bad": -3, "boring": -3, "broken": -1,
	"complicated": -2, "confusing": -2, "crap": -3, "difficult": -1, "disappointed": -2,
	"disappointing": -2, "expensive": -2, "fail": -2, "failed": -2, "failure": -2,
	"frustrated": -2, "frustrating": -2, "hard": -1, "hate": -3, "horrible": -3,
	"lose": -3, "lost": -3, "mess": -2, "poor": -2, "problem": -2, "problems": -2,
	"risk": -2, "sad": -2, "scary": -2, "slow": -2, "sorry": -1, "stuck": -2,
	"terrible": -3, "ugly": -3, "unfortunately": -2, "useless": -2, "waste": -1,
	"worried": -3, "worse": -3, "worst": -3, "wrong": -2,
}
