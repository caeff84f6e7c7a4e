package goout

import "parties247/internal/domain"

type city struct {
	name     string
	keywords []string
}

type regionCities struct {
	region domain.Region
	cities []city
}

// regionOrder is the match priority; center is last because its cities are
// often mentioned in descriptions of parties elsewhere ("buses from Tel Aviv").
var regionOrder = []regionCities{
	{domain.RegionJerusalem, []city{
		{"jerusalem", []string{"ירושלים", "jerusalem"}},
		{"beit shemesh", []string{"בית שמש", "beit shemesh"}},
		{"mevaseret", []string{"מבשרת ציון", "מבשרת", "mevaseret"}},
	}},
	{domain.RegionNorth, []city{
		{"haifa", []string{"חיפה", "haifa"}},
		{"nahariya", []string{"נהריה", "nahariya"}},
		{"akko", []string{"עכו", "akko", "acre"}},
		{"tiberias", []string{"טבריה", "tiberias"}},
		{"karmiel", []string{"כרמיאל", "karmiel"}},
		{"safed", []string{"צפת", "safed", "tzfat"}},
		{"nazareth", []string{"נצרת", "nazareth"}},
		{"kiryat shmona", []string{"קריית שמונה", "קרית שמונה", "kiryat shmona"}},
		{"afula", []string{"עפולה", "afula"}},
		{"zichron yaakov", []string{"זכרון יעקב", "zichron yaakov", "zichron"}},
		{"yokneam", []string{"יוקנעם", "yokneam"}},
		{"caesarea", []string{"קיסריה", "caesarea"}},
		{"golan", []string{"רמת הגולן", "הגולן", "golan"}},
		{"galilee", []string{"הגליל", "גליל", "galilee", "galil"}},
		{"kinneret", []string{"כנרת", "kinneret", "sea of galilee"}},
	}},
	{domain.RegionSouth, []city{
		{"beer sheva", []string{"באר שבע", "beer sheva", "beersheba", "be'er sheva"}},
		{"eilat", []string{"אילת", "eilat"}},
		{"ashdod", []string{"אשדוד", "ashdod"}},
		{"ashkelon", []string{"אשקלון", "ashkelon"}},
		{"mitzpe ramon", []string{"מצפה רמון", "mitzpe ramon"}},
		{"arad", []string{"ערד", "arad"}},
		{"dead sea", []string{"ים המלח", "dead sea"}},
		{"negev", []string{"נגב", "negev"}},
		{"dimona", []string{"דימונה", "dimona"}},
		{"sderot", []string{"שדרות", "sderot"}},
	}},
	{domain.RegionCenter, []city{
		{"tel aviv", []string{"תל אביב", "תל-אביב", "ת\"א", "tel aviv", "tel-aviv", "tlv"}},
		{"jaffa", []string{"יפו", "jaffa", "yafo"}},
		{"ramat gan", []string{"רמת גן", "ramat gan"}},
		{"givatayim", []string{"גבעתיים", "givatayim"}},
		{"herzliya", []string{"הרצליה", "herzliya"}},
		{"raanana", []string{"רעננה", "raanana", "ra'anana"}},
		{"kfar saba", []string{"כפר סבא", "kfar saba"}},
		{"petah tikva", []string{"פתח תקווה", "פתח תקוה", "petah tikva", "petach tikva"}},
		{"rishon lezion", []string{"ראשון לציון", "rishon lezion", "rishon"}},
		{"holon", []string{"חולון", "holon"}},
		{"bat yam", []string{"בת ים", "bat yam"}},
		{"netanya", []string{"נתניה", "netanya"}},
		{"rehovot", []string{"רחובות", "rehovot"}},
		{"modiin", []string{"מודיעין", "modiin", "modi'in"}},
		{"hod hasharon", []string{"הוד השרון", "hod hasharon"}},
		{"rosh haayin", []string{"ראש העין", "rosh haayin"}},
		{"ness ziona", []string{"נס ציונה", "ness ziona"}},
		{"lod", []string{"לוד", "lod"}},
		{"ramla", []string{"רמלה", "ramla"}},
	}},
}

type musicKeywords struct {
	music    domain.MusicType
	keywords []string
}

// musicOrder is the match priority: the more specific underground genres first.
var musicOrder = []musicKeywords{
	{domain.MusicTechno, []string{"techno", "טכנו", "minimal", "מינימל", "industrial", "hard techno"}},
	{domain.MusicTrance, []string{"trance", "טראנס", "psytrance", "psy", "פסיי", "goa", "גואה"}},
	{domain.MusicHouse, []string{"house", "האוס", "deep house", "tech house", "afro house", "דיפ האוס", "disco", "דיסקו"}},
	{domain.MusicHipHop, []string{"hip hop", "hip-hop", "hiphop", "היפ הופ", "rap", "ראפ", "trap", "טראפ", "r&b", "rnb"}},
	{domain.MusicMainstream, []string{"mainstream", "מיינסטרים", "top 40", "pop", "פופ", "reggaeton", "רגאטון", "מזרחית", "mizrahit", "להיטים", "hits", "commercial"}},
}

type eventKeywords struct {
	event    domain.EventType
	keywords []string
}

var eventOrder = []eventKeywords{
	{domain.EventFestival, []string{"festival", "פסטיבל", "fest"}},
	{domain.EventNature, []string{"nature", "טבע", "forest", "יער", "desert", "מדבר", "open air", "אופן אייר", "מסיבת טבע"}},
	{domain.EventBoat, []string{"boat", "סירה", "yacht", "יאכטה", "cruise", "שייט"}},
	{domain.EventBar, []string{"bar", "בר", "pub", "פאב", "lounge", "לאונג'"}},
	{domain.EventClub, []string{"club", "קלאב", "מועדון", "nightclub"}},
}

type ageKeywords struct {
	age      domain.Age
	keywords []string
}

// highest bucket first so "21+" is not read as "all ages" elsewhere in the text
var ageOrder = []ageKeywords{
	{domain.Age24, []string{"24+", "מגיל 24", "24 ומעלה", "+24"}},
	{domain.Age21, []string{"21+", "מגיל 21", "21 ומעלה", "+21"}},
	{domain.Age18, []string{"18+", "מגיל 18", "18 ומעלה", "+18"}},
}
