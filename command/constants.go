package command

// Protocol delimiters
const (
	// CRLF terminates every command line.
	CRLF = "\r\n"

	// Space separates the verb from its argument.
	Space = " "
)

// Size limits
const (
	// MaxLineSize is the default upper bound for a command line, terminator excluded.
	// A peer that sends this many bytes without a CRLF is considered broken or malicious.
	MaxLineSize = 8 * 1024

	// DefaultBufferSize is the initial capacity of a fresh accumulation buffer.
	DefaultBufferSize = 1024

	// MinVerbLength and MaxVerbLength bound the verb token.
	MinVerbLength = 3
	MaxVerbLength = 4
)

// Verbs of RFC 959.
//
// Only USER, PASS, PORT, TYPE and QUIT decode into dedicated command types.
// Every other verb decodes into Other and is left to the caller.
var (
	// Access control
	VerbUser = mustVerb("USER")
	VerbPass = mustVerb("PASS")
	VerbAcct = mustVerb("ACCT")
	VerbCwd  = mustVerb("CWD")
	VerbCdup = mustVerb("CDUP")
	VerbSmnt = mustVerb("SMNT")
	VerbRein = mustVerb("REIN")
	VerbQuit = mustVerb("QUIT")

	// Transfer parameters
	VerbPort = mustVerb("PORT")
	VerbPasv = mustVerb("PASV")
	VerbType = mustVerb("TYPE")
	VerbStru = mustVerb("STRU")
	VerbMode = mustVerb("MODE")

	// Service
	VerbRetr = mustVerb("RETR")
	VerbStor = mustVerb("STOR")
	VerbStou = mustVerb("STOU")
	VerbAppe = mustVerb("APPE")
	VerbAllo = mustVerb("ALLO")
	VerbRest = mustVerb("REST")
	VerbRnfr = mustVerb("RNFR")
	VerbRnto = mustVerb("RNTO")
	VerbAbor = mustVerb("ABOR")
	VerbDele = mustVerb("DELE")
	VerbRmd  = mustVerb("RMD")
	VerbMkd  = mustVerb("MKD")
	VerbPwd  = mustVerb("PWD")
	VerbList = mustVerb("LIST")
	VerbNlst = mustVerb("NLST")
	VerbSite = mustVerb("SITE")
	VerbSyst = mustVerb("SYST")
	VerbStat = mustVerb("STAT")
	VerbHelp = mustVerb("HELP")
	VerbNoop = mustVerb("NOOP")
)

// Representation types accepted by TYPE.
const (
	RepASCII  Representation = 'A'
	RepEBCDIC Representation = 'E'
	RepImage  Representation = 'I'
	RepLocal  Representation = 'L'
)

// Format controls accepted after an ASCII or EBCDIC representation type.
// FormNone means the client did not send one.
const (
	FormNone            FormCode = 0
	FormNonPrint        FormCode = 'N'
	FormTelnet          FormCode = 'T'
	FormCarriageControl FormCode = 'C'
)
