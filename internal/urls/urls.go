package urls

// Documentation URLs for setup and troubleshooting

// SimpleIPControl is Sony's overview of the simple IP control protocol,
// including how to enable it on the display.
const SimpleIPControl = "https://pro-bravia.sony.net/develop/integrate/ssip/overview/index.html"

// SimpleIPCommands lists every command, its parameters and answers.
const SimpleIPCommands = "https://pro-bravia.sony.net/develop/integrate/ssip/command-definitions/index.html"

// IRCCCodes lists the remote control codes accepted by IRCC.
const IRCCCodes = "https://pro-bravia.sony.net/develop/integrate/ircc-ip/ircc-codes/index.html"

// Repository is the project home, shown in the monitor footer.
const Repository = "github.com/muurk/bravia"
