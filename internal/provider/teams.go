package provider

// Team holds the stats API identifier and abbreviation for one NBA team
type Team struct {
	StatsID int64
	Abbr    string
}

// Teams maps full team names, as the odds board spells them, to their stats
// API identity. The odds provider uses "LA Clippers" rather than the full
// city name.
var Teams = map[string]Team{
	"Atlanta Hawks":          {1610612737, "ATL"},
	"Boston Celtics":         {1610612738, "BOS"},
	"Brooklyn Nets":          {1610612751, "BKN"},
	"Charlotte Hornets":      {1610612766, "CHA"},
	"Chicago Bulls":          {1610612741, "CHI"},
	"Cleveland Cavaliers":    {1610612739, "CLE"},
	"Dallas Mavericks":       {1610612742, "DAL"},
	"Denver Nuggets":         {1610612743, "DEN"},
	"Detroit Pistons":        {1610612765, "DET"},
	"Golden State Warriors":  {1610612744, "GSW"},
	"Houston Rockets":        {1610612745, "HOU"},
	"Indiana Pacers":         {1610612754, "IND"},
	"LA Clippers":            {1610612746, "LAC"},
	"Los Angeles Lakers":     {1610612747, "LAL"},
	"Memphis Grizzlies":      {1610612763, "MEM"},
	"Miami Heat":             {1610612748, "MIA"},
	"Milwaukee Bucks":        {1610612749, "MIL"},
	"Minnesota Timberwolves": {1610612750, "MIN"},
	"New Orleans Pelicans":   {1610612740, "NOP"},
	"New York Knicks":        {1610612752, "NYK"},
	"Oklahoma City Thunder":  {1610612760, "OKC"},
	"Orlando Magic":          {1610612753, "ORL"},
	"Philadelphia 76ers":     {1610612755, "PHI"},
	"Phoenix Suns":           {1610612756, "PHX"},
	"Portland Trail Blazers": {1610612757, "POR"},
	"Sacramento Kings":       {1610612758, "SAC"},
	"San Antonio Spurs":      {1610612759, "SAS"},
	"Toronto Raptors":        {1610612761, "TOR"},
	"Utah Jazz":              {1610612762, "UTA"},
	"Washington Wizards":     {1610612764, "WAS"},
}

// LookupTeam resolves a full team name to its stats identity
func LookupTeam(name string) (Team, bool) {
	t, ok := Teams[name]
	return t, ok
}

// TeamAbbr returns the abbreviation for a full team name, or empty string
// when the team is unknown
func TeamAbbr(name string) string {
	if t, ok := Teams[name]; ok {
		return t.Abbr
	}
	return ""
}
