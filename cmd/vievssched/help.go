package main

const helpText = `vievssched - VLBI geodetic/astrometric session scheduler

Usage: vievssched [options] <config.toml>

vievssched builds an ordered list of scans (simultaneous multi-station radio
source observations) over a fixed time window, station set and source
catalog, greedily maximising a tunable scoring objective subject to
per-station mechanical, electrical and operational constraints.

Configuration sections/options (TOML):

* top level: session window and scan shape
  - catalog            = path to the station/source/observing-mode catalog
  - session            = session name, used only for logging/output
  - output             = file the statistics line or multi-schedule summary
                         is written to (overwritten; stdout when unset)
  - session-start      = session window start (RFC 3339)
  - session-end        = session window end (RFC 3339)
  - min-scan, max-scan = per-scan observing duration bounds
  - preob, midob, postob, field-system = bracketing interval durations
  - min-stations       = minimum participating stations per scan
  - max-slew, max-wait = per-station admissibility bounds (component C9)
  - observing-mode     = name of the mode looked up in the catalog

* [weights]      : the nine scorer term weights (component C10)
* [subnetting]   : subnetting solver options (component C11)
* [fillin]       : fill-in inserter options (component C12)
* [sky-coverage] : novelty-tracker options (component C8)
* [rules]        : calibrator/high-impact/focus-corner rule options (C14)
* [quality]      : figure-of-merit weights and hard conditions (C16)
* [multi-schedule], [[grid.axis]], [genetic]:
  multi-schedule driver mode (component C15); multi-schedule.mode selects
  "grid" (enumerate [[grid.axis]] entries) or "genetic" (evolve [genetic]'s
  population); omit both to run a single build with the top-level settings.

Options:

  -list-stations  print the catalog's station table and exit
  -list-sources   print the catalog's source table and exit
  -version        print vievssched version and exit
  -help           print this message and exit
`
