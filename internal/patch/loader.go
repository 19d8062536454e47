package patch

// loaderScript is the runtime half of the embedding: it runs inside the
// host document, decodes each embedded record, and registers it with the
// host's script list. It is inserted verbatim; every identifier it
// touches (pythonScripts, log, updateScriptsList, updateFileDropZone,
// updateRunButtonState, scriptZoneInstructions) belongs to the host
// document, not to this tool.
const loaderScript = `
        // Function to decode base64 embedded scripts
        function loadEmbeddedScripts() {
            if (typeof embeddedScripts === 'undefined' || embeddedScripts.length === 0) {
                return;
            }

            log(` + "`Loading ${embeddedScripts.length} embedded Python script(s)...`" + `);

            embeddedScripts.forEach(scriptData => {
                try {
                    // Decode base64 content
                    const content = atob(scriptData.content_encoded);

                    // Create a File-like object for the script
                    const blob = new Blob([content], { type: 'text/plain' });
                    const file = new File([blob], scriptData.name, {
                        lastModified: new Date().getTime()
                    });

                    // Add to pythonScripts array if not already present
                    if (!pythonScripts.some(ps => ps.name === scriptData.name)) {
                        const newScript = {
                            name: scriptData.name,
                            content: content,
                            requiredInputs: scriptData.required_inputs || [],
                            derivedInputs: scriptData.derived_inputs || [],
                            fileObject: file,
                            id: ` + "`py-${scriptData.name.replace(/[^a-zA-Z0-9]/g, '-')}`" + `
                        };
                        pythonScripts.push(newScript);
                        log(` + "`Loaded embedded script: ${scriptData.name} (Required inputs: ${newScript.requiredInputs.join(', ') || 'none'}, Derived inputs: ${newScript.derivedInputs.join(', ') || 'none'})`" + `);
                    }
                } catch (error) {
                    log(` + "`Error loading embedded script ${scriptData.name}: ${error.message}`" + `, 'error');
                }
            });

            // Sort scripts and update UI
            pythonScripts.sort((a, b) => a.name.localeCompare(b.name));
            updateScriptsList();
            updateFileDropZone();
            updateRunButtonState();

            // Hide script zone instructions since we have scripts
            const scriptZoneInstructions = document.getElementById('scriptZoneInstructions');
            if (scriptZoneInstructions) {
                scriptZoneInstructions.style.display = 'none';
            }
        }`
