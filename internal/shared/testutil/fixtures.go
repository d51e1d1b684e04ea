package testutil

// SessionCSV covers four trading dates:
//
//	15JAN24  anchor 198 at 09:15:30, seed 260 at 09:45:00
//	16JAN24  anchor 150 at 09:15:40, cut at 300, exit row at 15:15:00
//	17JAN24  PE rows only
//	18JAN24  CE rows but no anchor candidate
//
// plus one row whose ticker carries no date. Labeling it yields one pair
// (280 -> 300) and a total difference of -20.
const SessionCSV = `Ticker,Close,Time
BANKNIFTY15JAN2447000CE.NFO,195,09:15:10
BANKNIFTY15JAN2447000PE.NFO,199,09:15:20
BANKNIFTY15JAN2447000CE.NFO,198,09:15:30
BANKNIFTY15JAN2447000CE.NFO,240,09:30:00
BANKNIFTY15JAN2447000CE.NFO,260,09:45:00
BANKNIFTY15JAN2447000CE.NFO,280,10:00:00
BANKNIFTY16JAN2447000CE.NFO,210,09:15:05
BANKNIFTY16JAN2447000CE.NFO,150,09:15:40
BANKNIFTY16JAN2447000CE.NFO,300,09:20:00
BANKNIFTY16JAN2447000CE.NFO,290,15:15:00
BANKNIFTY17JAN2447000PE.NFO,120,09:15:10
BANKNIFTY18JAN2447000CE.NFO,190,09:20:00
NIFTYXYZ,12,09:16:00
`

// SessionTotal is the total difference of SessionCSV.
const SessionTotal = "-20"

// MissingCloseCSV lacks the Close column.
const MissingCloseCSV = `Ticker,Time
BANKNIFTY15JAN2447000CE.NFO,09:15:10
`
