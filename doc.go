/*
Command ephtrunc compacts tabulated ephemeris series, lunar series of the
ELP/MPP02 kind and planetary series of the VSOP87A kind, so that they take
far fewer characters to store while the positions computed from them move
by no more than a stated error budget.

Contents

  Program overview
  Command line usage
  Budget files
  Series files
  Algorithm outline


Program overview

Input is a series file in JSON, with every coefficient of every term.  Output
is a file of the same layout with short coefficient literals and with the
terms that do not pay for their characters removed.  Coefficients in the
output are written as chosen text, for example 2.3556 or 1.5e-4, not as
whatever a JSON encoder would print for the float value.  Programs reading
the output should parse the numbers as given.

Sample run:

  ephtrunc compact --in mpp02_llr.json --out mpp02_7.json --measure

prints the number of terms in each group before and after, the total
characters before and after, and a table of position errors of the
compacted series against the raw series over intervals up to the assumed
time range.

Errors are relative position errors, so they read as angles, and are shown
in degrees, minutes and seconds of arc.


Command line usage

  ephtrunc compact --in <file> --out <file> [options]
        Write a compacted copy of a series.
  ephtrunc measure --ref <raw file> --in <compacted file> [options]
        Compare positions from the two files.
  ephtrunc runs [--record <db>] [--limit n]
        List runs recorded with compact --record.
  ephtrunc presets [--model mpp02|vsop87a] [--preset name]
        List presets, or print a model's default budget as YAML.

Options of compact and measure:

  --model    mpp02 or vsop87a.  The default is taken from the file layout,
             given explicitly it must match.
  --preset   coarse, medium (default), or fine.  Thresholds 1e-5, 1e-7, 1e-9.
  --tmax     assumed largest |t|.  Julian centuries for lunar series, Julian
             millennia for planetary series.  Defaults 30 and 5.
  --config   YAML budget file, see below.

Options of compact only:

  --policy    fixed (default) or cost.
  --strategy  greedy (default) or scan, how the fixed policy searches an
              interval for a short number.
  --workers   number of goroutines compacting terms.  Output does not
              depend on it.
  --record    SQLite database to log the run to.
  --measure   measure the result as the measure command would.

Options of measure:

  --num      sample times per interval, default 100.
  --random   number of additional uniformly random sample times.
  --seed     seed of the random times, default 3.

-v or --verbose logs each group.  Logs go to stderr as JSON.


Budget files

A budget file overrides the defaults of the preset it names.  All keys are
optional.

  preset: medium
  t_max: 30
  threshold: 1e-7
  max_error_per_char: 2e-9
  scale: [206264.80624709636, 206264.80624709636, 384399]
  body_weight:
    VENUS: 0.28
  skip: [EARTH]

scale is coefficient units per normalized unit, per coordinate.  For lunar
series the angles are in arc seconds and the distance in km, so the
defaults make errors radians on the unit sphere and distance relative to
the mean lunar distance.  Planetary coordinates are in AU, each body
weighted by min(d, |1-d|) for mean solar distance d, so an error is
comparable as seen from the Sun or from the Earth.  Bodies listed under
skip are left out of the output.

"ephtrunc presets --model vsop87a" prints a complete file.


Series files

A lunar file has members "W", the secular polynomial of the mean
longitude, and "groups", a list of {"coord", "alpha", "coeffs"}.  Each group
adds terms

  c0 * t^alpha * sin(c1 + c2*t + c3*t^2 + c4*t^3 + c5*t^4)

to coordinate coord, with coeffs holding six numbers per term.  A planetary
file has "matrix", the rotation to the equator, and "bodies", an object of
group lists, with terms

  a * t^alpha * cos(b + c*t)

three numbers per term.  "_comment" is copied to the output with a note of
the budget appended.


Algorithm outline

1.  For a term with amplitude a and time power alpha, over |t| <= T, a
change da of the amplitude moves the term by at most |da| T^alpha and a
change dc of the coefficient of t^k in the phase moves it by at most
|a| T^alpha |dc| T^k.  The threshold, in normalized units, times the
coordinate's scale and the body's weight, divided through by these factors
gives each coefficient a leeway.

2.  The fixed policy replaces each coefficient by the shortest decimal within
its leeway.  The greedy search rounds the exact binary value to 17, 16, ...
significant digits, round half to even on the exact decimal expansion, and
keeps the shortest text found in the interval.  Each rounding is written in
standard form or plain form, whichever is shorter, and is checked to parse
back to the correctly rounded value.

3.  The cost policy starts from the exact value and gives up one digit at a
time while each step costs no more than max_error_per_char of normalized
error per character saved, never leaving the leeway.

4.  A term is removed if its amplitude rounds to zero, or if removing it costs
less than max_error_per_char for each character it would occupy once
compacted.  The cost policy counts the characters of the raw term instead.
Larger budgets never remove fewer terms.

5.  Terms are compacted concurrently and reassembled in order.  A term that
fails to compact is kept as it was and reported.

-------------
Public domain.
*/
package main
